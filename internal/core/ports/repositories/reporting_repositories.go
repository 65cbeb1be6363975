package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// SumLinesByAccount aggregates posted lines per account within the filter's date range.
	// Accounts without lines in the range are omitted.
	SumLinesByAccount(ctx context.Context, companyID string, filter domain.ActivityFilter) ([]domain.AccountActivity, error)
}
