package accounting

import (
	"fmt"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// DefaultTolerance is the legacy acceptance window for debit/credit equality.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// ValidateLines checks the shape of every line and returns all problems at once.
// Each line must carry exactly one strictly positive side with at most AmountScale decimals.
func ValidateLines(lines []domain.LineInput) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: journal entry must have at least two lines", domain.ErrInvalidLine)
	}

	var errs error
	for i, l := range lines {
		lineNo := i + 1
		if l.AccountID == "" {
			errs = multierr.Append(errs, fmt.Errorf("line %d: account is required", lineNo))
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("line %d: amounts must not be negative", lineNo))
			continue
		}
		if !fitsScale(l.Debit) || !fitsScale(l.Credit) {
			errs = multierr.Append(errs, fmt.Errorf("line %d: amounts allow at most %d decimal places", lineNo, domain.AmountScale))
		}
		hasDebit, hasCredit := l.Debit.IsPositive(), l.Credit.IsPositive()
		switch {
		case hasDebit && hasCredit:
			errs = multierr.Append(errs, fmt.Errorf("line %d: both debit and credit are set", lineNo))
		case !hasDebit && !hasCredit:
			errs = multierr.Append(errs, fmt.Errorf("line %d: debit and credit are both zero", lineNo))
		}
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidLine, errs)
	}
	return nil
}

// fitsScale reports whether d is stored without rounding.
func fitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(domain.AmountScale))
}

// SumLines returns total debits and total credits.
func SumLines(lines []domain.LineInput) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether |debit - credit| is strictly below tolerance.
// A difference of exactly one tolerance unit is a real cent out and is rejected.
// A zero tolerance demands exact equality.
func IsBalanced(debit, credit, tolerance decimal.Decimal) bool {
	if !tolerance.IsPositive() {
		return debit.Equal(credit)
	}
	return debit.Sub(credit).Abs().LessThan(tolerance)
}

// BalanceChanges aggregates the net-debit effect of the lines per account.
func BalanceChanges(lines []domain.JournalLine) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal)
	for _, l := range lines {
		changes[l.AccountID] = changes[l.AccountID].Add(l.NetDebit())
	}
	return changes
}

// NormalizedAmount converts a net-debit amount into the account type's natural sign:
// assets and expenses read debit-positive, liabilities, equity and revenue credit-positive.
func NormalizedAmount(accountType domain.AccountType, netDebit decimal.Decimal) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return netDebit, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return netDebit.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}
