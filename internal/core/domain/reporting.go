package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountActivity is the sum of posted debits and credits against one account.
type AccountActivity struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Net returns debit minus credit.
func (a AccountActivity) Net() decimal.Decimal {
	return a.Debit.Sub(a.Credit)
}

// ActivityFilter bounds line aggregation by entry date, inclusive. Nil bounds are open.
type ActivityFilter struct {
	From *time.Time
	To   *time.Time
}

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport is the account snapshot with debit and credit columns.
type TrialBalanceReport struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// IncomeStatement reports revenue and expense for a date range.
type IncomeStatement struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	Revenue      []AccountAmount `json:"revenue"`
	Expenses     []AccountAmount `json:"expenses"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetIncome    decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport represents a balance sheet report
type BalanceSheetReport struct {
	AsOf                time.Time       `json:"asOf"`
	Assets              []AccountAmount `json:"assets"`
	Liabilities         []AccountAmount `json:"liabilities"`
	Equity              []AccountAmount `json:"equity"`
	CurrentYearEarnings decimal.Decimal `json:"currentYearEarnings"`
	RetainedEarnings    decimal.Decimal `json:"retainedEarnings"`
	TotalAssets         decimal.Decimal `json:"totalAssets"`
	TotalLiabilities    decimal.Decimal `json:"totalLiabilities"`
	TotalEquity         decimal.Decimal `json:"totalEquity"`
}

// CashFlowRow is the movement on one liquid account.
type CashFlowRow struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Inflow    decimal.Decimal `json:"inflow"`
	Outflow   decimal.Decimal `json:"outflow"`
}

// CashFlowReport partitions liquid-account activity into inflow and outflow.
type CashFlowReport struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	Rows         []CashFlowRow   `json:"rows"`
	TotalInflow  decimal.Decimal `json:"totalInflow"`
	TotalOutflow decimal.Decimal `json:"totalOutflow"`
	NetCashFlow  decimal.Decimal `json:"netCashFlow"`
}
