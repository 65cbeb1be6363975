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

type PgxPeriodLockRepository struct {
	BaseRepository
}

func newPgxPeriodLockRepository(pool *pgxpool.Pool) *PgxPeriodLockRepository {
	return &PgxPeriodLockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodLockRepository = (*PgxPeriodLockRepository)(nil)

const periodLockColumns = `lock_id, company_id, period_start, period_end, is_locked,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPeriodLock(row pgx.Row) (*domain.PeriodLock, error) {
	var p domain.PeriodLock
	err := row.Scan(&p.LockID, &p.CompanyID, &p.PeriodStart, &p.PeriodEnd, &p.IsLocked,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy)
	if err != nil {
		return nil, err
	}
	p.PeriodStart, p.PeriodEnd = domain.DateOnly(p.PeriodStart), domain.DateOnly(p.PeriodEnd)
	return &p, nil
}

// HasLockedPeriod reports whether an active lock covers date.
func (r *PgxPeriodLockRepository) HasLockedPeriod(ctx context.Context, companyID string, date time.Time) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM period_locks
			WHERE company_id = $1 AND is_locked AND $2::date BETWEEN period_start AND period_end
		);`, companyID, domain.DateOnly(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check period locks for company %s: %w", companyID, err)
	}
	return exists, nil
}

// lockCompanyPeriods waits for in-flight postings of the company to finish and holds
// new ones off until tx ends.
func lockCompanyPeriods(ctx context.Context, tx pgx.Tx, companyID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, periodLockKey(companyID)); err != nil {
		return fmt.Errorf("failed to lock periods of company %s: %w", companyID, err)
	}
	return nil
}

func (r *PgxPeriodLockRepository) SavePeriodLock(ctx context.Context, lock domain.PeriodLock) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockCompanyPeriods(ctx, tx, lock.CompanyID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO period_locks (`+periodLockColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			lock.LockID, lock.CompanyID, lock.PeriodStart, lock.PeriodEnd, lock.IsLocked,
			lock.CreatedAt, lock.CreatedBy, lock.LastUpdatedAt, lock.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to save period lock %s: %w", lock.LockID, err)
		}
		return nil
	})
}

func (r *PgxPeriodLockRepository) FindPeriodLockByID(ctx context.Context, companyID, lockID string) (*domain.PeriodLock, error) {
	lock, err := scanPeriodLock(r.Pool.QueryRow(ctx,
		`SELECT `+periodLockColumns+` FROM period_locks WHERE company_id = $1 AND lock_id = $2;`, companyID, lockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period lock %s: %w", lockID, err)
	}
	return lock, nil
}

func (r *PgxPeriodLockRepository) SetPeriodLockState(ctx context.Context, companyID, lockID string, locked bool, actorID string, now time.Time) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockCompanyPeriods(ctx, tx, companyID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE period_locks SET is_locked = $3, last_updated_at = $4, last_updated_by = $5
			WHERE company_id = $1 AND lock_id = $2;`,
			companyID, lockID, locked, now, actorID)
		if err != nil {
			return fmt.Errorf("failed to update period lock %s: %w", lockID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *PgxPeriodLockRepository) ListPeriodLocks(ctx context.Context, companyID string) ([]domain.PeriodLock, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+periodLockColumns+` FROM period_locks WHERE company_id = $1 ORDER BY period_start, lock_id;`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list period locks for company %s: %w", companyID, err)
	}
	defer rows.Close()

	locks := []domain.PeriodLock{}
	for rows.Next() {
		lock, err := scanPeriodLock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period lock row: %w", err)
		}
		locks = append(locks, *lock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period lock rows: %w", err)
	}
	return locks, nil
}

func (r *PgxPeriodLockRepository) FindLatestLockedEnd(ctx context.Context, companyID string) (*time.Time, error) {
	var end *time.Time
	err := r.Pool.QueryRow(ctx,
		`SELECT MAX(period_end) FROM period_locks WHERE company_id = $1 AND is_locked;`, companyID).Scan(&end)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest locked period for company %s: %w", companyID, err)
	}
	if end != nil {
		d := domain.DateOnly(*end)
		end = &d
	}
	return end, nil
}
