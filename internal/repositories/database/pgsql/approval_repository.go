package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxApprovalRepository struct {
	BaseRepository
}

func newPgxApprovalRepository(pool *pgxpool.Pool) *PgxApprovalRepository {
	return &PgxApprovalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ApprovalRepositoryFacade = (*PgxApprovalRepository)(nil)

const approvalColumns = `request_id, company_id, module, record_id, status, requested_by, requested_at,
	decided_by, decided_at, reason`

func scanApproval(row pgx.Row) (*domain.ApprovalRequest, error) {
	var a domain.ApprovalRequest
	err := row.Scan(&a.RequestID, &a.CompanyID, &a.Module, &a.RecordID, &a.Status, &a.RequestedBy, &a.RequestedAt,
		&a.DecidedBy, &a.DecidedAt, &a.Reason)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PgxApprovalRepository) FindApprovalRequestByID(ctx context.Context, companyID, requestID string) (*domain.ApprovalRequest, error) {
	req, err := scanApproval(r.Pool.QueryRow(ctx,
		`SELECT `+approvalColumns+` FROM approval_requests WHERE company_id = $1 AND request_id = $2;`, companyID, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approval request %s: %w", requestID, err)
	}
	return req, nil
}

func (r *PgxApprovalRepository) ExistsApprovedRequest(ctx context.Context, companyID, module, recordID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM approval_requests
			WHERE company_id = $1 AND module = $2 AND record_id = $3 AND status = 'APPROVED'
		);`, companyID, module, recordID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check approval for %s/%s: %w", module, recordID, err)
	}
	return exists, nil
}

func (r *PgxApprovalRepository) ListApprovalRequestsByStatus(ctx context.Context, companyID string, status domain.ApprovalStatus) ([]domain.ApprovalRequest, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+approvalColumns+` FROM approval_requests
		WHERE company_id = $1 AND status = $2
		ORDER BY requested_at, request_id;`, companyID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval requests: %w", err)
	}
	defer rows.Close()

	requests := []domain.ApprovalRequest{}
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval request row: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval request rows: %w", err)
	}
	return requests, nil
}

const insertApproval = `
	INSERT INTO approval_requests (` + approvalColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

func insertApprovalArgs(req domain.ApprovalRequest) []any {
	return []any{req.RequestID, req.CompanyID, req.Module, req.RecordID, req.Status, req.RequestedBy, req.RequestedAt,
		req.DecidedBy, req.DecidedAt, req.Reason}
}

func (r *PgxApprovalRepository) SaveApprovalRequest(ctx context.Context, req domain.ApprovalRequest) error {
	if _, err := r.Pool.Exec(ctx, insertApproval, insertApprovalArgs(req)...); err != nil {
		return fmt.Errorf("failed to save approval request %s: %w", req.RequestID, err)
	}
	return nil
}

// SaveApprovalRequestIfNoneOpen serializes on a transaction-scoped advisory lock keyed by
// (company, module, record) so the existence check and insert are atomic.
func (r *PgxApprovalRepository) SaveApprovalRequestIfNoneOpen(ctx context.Context, req domain.ApprovalRequest) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		key := req.CompanyID + "|" + req.Module + "|" + req.RecordID
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, key); err != nil {
			return fmt.Errorf("failed to lock approval key: %w", err)
		}

		var open bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM approval_requests
				WHERE company_id = $1 AND module = $2 AND record_id = $3 AND status IN ('PENDING', 'APPROVED')
			);`, req.CompanyID, req.Module, req.RecordID).Scan(&open)
		if err != nil {
			return fmt.Errorf("failed to check open approval requests: %w", err)
		}
		if open {
			return domain.ErrDuplicateRequest
		}

		if _, err := tx.Exec(ctx, insertApproval, insertApprovalArgs(req)...); err != nil {
			return fmt.Errorf("failed to save approval request %s: %w", req.RequestID, err)
		}
		return nil
	})
}

// DecideApprovalRequest only touches rows still PENDING, so exactly one concurrent decider wins.
func (r *PgxApprovalRepository) DecideApprovalRequest(ctx context.Context, companyID, requestID string, status domain.ApprovalStatus, deciderID, reason string, now time.Time) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE approval_requests
		SET status = $3, decided_by = $4, decided_at = $5, reason = $6
		WHERE company_id = $1 AND request_id = $2 AND status = 'PENDING';`,
		companyID, requestID, status, deciderID, now, reason)
	if err != nil {
		return false, fmt.Errorf("failed to decide approval request %s: %w", requestID, err)
	}
	return tag.RowsAffected() == 1, nil
}
