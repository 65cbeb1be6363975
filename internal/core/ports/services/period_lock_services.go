package services

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// PeriodGuard answers whether a dated mutation is allowed.
type PeriodGuard interface {
	// IsDateLocked reports whether date falls in an active lock. Failures report true.
	IsDateLocked(ctx context.Context, companyID string, date time.Time) bool
}

// PeriodLockSvc manages closed periods.
type PeriodLockSvc interface {
	PeriodGuard

	LockPeriod(ctx context.Context, companyID string, start, end time.Time, actorID string) (*domain.PeriodLock, error)

	// UnlockPeriod re-opens a closed period. The record is kept.
	UnlockPeriod(ctx context.Context, companyID, lockID, actorID string) (*domain.PeriodLock, error)

	RelockPeriod(ctx context.Context, companyID, lockID, actorID string) (*domain.PeriodLock, error)

	ListLocks(ctx context.Context, companyID string) ([]domain.PeriodLock, error)

	// SuggestNextPeriod returns the range a company would most likely close next.
	SuggestNextPeriod(ctx context.Context, companyID string) (time.Time, time.Time, error)
}
