package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// AuditRepository appends audit records.
type AuditRepository interface {
	InsertAuditRecord(ctx context.Context, record domain.AuditRecord) error
}
