package services

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance splits each account balance into a debit or credit column.
	TrialBalance(ctx context.Context, companyID string) (*domain.TrialBalanceReport, error)

	// IncomeStatement aggregates revenue and expense lines in the inclusive range.
	IncomeStatement(ctx context.Context, companyID string, from, to *time.Time) (*domain.IncomeStatement, error)

	// BalanceSheet reports positions as of a date, today when nil.
	BalanceSheet(ctx context.Context, companyID string, asOf *time.Time) (*domain.BalanceSheetReport, error)

	// CashFlow reports movement on liquid accounts in the inclusive range.
	CashFlow(ctx context.Context, companyID string, from, to *time.Time) (*domain.CashFlowReport, error)
}
