package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// InsertAuditRecord appends to audit_logs. Details are stored as JSONB.
func (r *PgxAuditRepository) InsertAuditRecord(ctx context.Context, rec domain.AuditRecord) error {
	details := rec.Details
	if details == nil {
		details = map[string]any{}
	}
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO audit_logs (audit_id, company_id, actor_id, action, table_name, record_id, severity, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		rec.AuditID, rec.CompanyID, rec.ActorID, rec.Action, rec.TableName, rec.RecordID, rec.Severity, details, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record %s: %w", rec.AuditID, err)
	}
	return nil
}
