package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// PeriodLockRepository stores closed-period records.
type PeriodLockRepository interface {
	// HasLockedPeriod reports whether any active lock of the company covers date.
	HasLockedPeriod(ctx context.Context, companyID string, date time.Time) (bool, error)

	SavePeriodLock(ctx context.Context, lock domain.PeriodLock) error

	FindPeriodLockByID(ctx context.Context, companyID, lockID string) (*domain.PeriodLock, error)

	// SetPeriodLockState flips the locked flag, keeping the record.
	SetPeriodLockState(ctx context.Context, companyID, lockID string, locked bool, actorID string, now time.Time) error

	// ListPeriodLocks returns every lock of the company ordered by period start.
	ListPeriodLocks(ctx context.Context, companyID string) ([]domain.PeriodLock, error)

	// FindLatestLockedEnd returns the greatest period end among active locks, or nil when none exist.
	FindLatestLockedEnd(ctx context.Context, companyID string) (*time.Time, error)
}
