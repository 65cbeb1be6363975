package services

import (
	"fmt"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// autoPostService turns business documents into ledger entries. Each adapter lives in its
// own file: autopost_sales.go, autopost_purchasing.go and autopost_treasury.go.
type autoPostService struct {
	BaseService
	accounts portssvc.AccountWriterSvc
	ledger   portssvc.LedgerPosterSvc
	docs     portsrepo.DocumentSource
}

// NewAutoPostService creates the auto-posting adapters.
func NewAutoPostService(accounts portssvc.AccountWriterSvc, ledger portssvc.LedgerPosterSvc, docs portsrepo.DocumentSource, opts ...Option) portssvc.AutoPostSvc {
	return &autoPostService{
		BaseService: newBaseService(opts),
		accounts:    accounts,
		ledger:      ledger,
		docs:        docs,
	}
}

var _ portssvc.AutoPostSvc = (*autoPostService)(nil)

// twoLine builds a debit/credit pair for amount.
func twoLine(debitAccountID, creditAccountID string, amount decimal.Decimal, description string) []domain.LineInput {
	return []domain.LineInput{
		{AccountID: debitAccountID, Debit: amount, Description: description},
		{AccountID: creditAccountID, Credit: amount, Description: description},
	}
}

func requirePositive(kind, number string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s %s has no amount to post", apperrors.ErrValidation, kind, number)
	}
	return nil
}

func documentError(op string, err error) error {
	if isNotFound(err) {
		return err
	}
	return domain.StorageFailure(op, err)
}
