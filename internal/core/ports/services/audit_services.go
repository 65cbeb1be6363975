package services

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// AuditSvc records privileged operations. It never fails the caller.
type AuditSvc interface {
	Record(ctx context.Context, record domain.AuditRecord)
}
