package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/google/uuid"
)

type auditService struct {
	BaseService
	auditRepo portsrepo.AuditRepository
}

// NewAuditService creates the audit sink used by privileged operations.
func NewAuditService(auditRepo portsrepo.AuditRepository, opts ...Option) portssvc.AuditSvc {
	return &auditService{
		BaseService: newBaseService(opts),
		auditRepo:   auditRepo,
	}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

// Record stores the record. A failed write is logged and dropped so that the audited
// operation, which has already happened, is still reported as successful.
func (s *auditService) Record(ctx context.Context, record domain.AuditRecord) {
	if record.AuditID == "" {
		record.AuditID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.Now()
	}
	if record.Severity == "" {
		record.Severity = domain.SeverityInfo
	}

	if err := s.auditRepo.InsertAuditRecord(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to write audit record",
			slog.String("action", record.Action),
			slog.String("record_id", record.RecordID),
			slog.String("actor_id", record.ActorID))
		return
	}
	s.LogDebug(ctx, "Audit record written", slog.String("action", record.Action), slog.String("record_id", record.RecordID))
}
