package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/google/uuid"
)

const periodLocksTable = "period_locks"

type periodLockService struct {
	BaseService
	lockRepo portsrepo.PeriodLockRepository
	audit    portssvc.AuditSvc
}

// NewPeriodLockService creates the period lock guard.
func NewPeriodLockService(lockRepo portsrepo.PeriodLockRepository, audit portssvc.AuditSvc, opts ...Option) portssvc.PeriodLockSvc {
	return &periodLockService{
		BaseService: newBaseService(opts),
		lockRepo:    lockRepo,
		audit:       audit,
	}
}

var _ portssvc.PeriodLockSvc = (*periodLockService)(nil)

// IsDateLocked fails closed: any lookup failure is reported as locked.
func (s *periodLockService) IsDateLocked(ctx context.Context, companyID string, date time.Time) bool {
	locked, err := s.lockRepo.HasLockedPeriod(ctx, companyID, domain.DateOnly(date))
	if err != nil {
		s.LogError(ctx, err, "Period lock check failed, treating date as locked",
			slog.String("company_id", companyID),
			slog.String("date", date.Format(time.DateOnly)))
		return true
	}
	return locked
}

func (s *periodLockService) LockPeriod(ctx context.Context, companyID string, start, end time.Time, actorID string) (*domain.PeriodLock, error) {
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if companyID == "" || actorID == "" {
		return nil, fmt.Errorf("%w: company and actor are required", apperrors.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period end %s is before start %s", apperrors.ErrValidation,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	now := s.Now()
	lock := domain.PeriodLock{
		LockID:      uuid.NewString(),
		CompanyID:   companyID,
		PeriodStart: start,
		PeriodEnd:   end,
		IsLocked:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.lockRepo.SavePeriodLock(ctx, lock); err != nil {
		s.LogError(ctx, err, "Failed to save period lock", slog.String("company_id", companyID))
		return nil, domain.StorageFailure("save period lock", err)
	}

	s.audit.Record(ctx, domain.AuditRecord{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    domain.AuditPeriodLock,
		TableName: periodLocksTable,
		RecordID:  lock.LockID,
		Severity:  domain.SeverityInfo,
		Details:   periodDetails(lock),
	})
	s.LogInfo(ctx, "Period locked", slog.String("lock_id", lock.LockID),
		slog.String("period_start", start.Format(time.DateOnly)),
		slog.String("period_end", end.Format(time.DateOnly)))
	return &lock, nil
}

func (s *periodLockService) UnlockPeriod(ctx context.Context, companyID, lockID, actorID string) (*domain.PeriodLock, error) {
	return s.setLockState(ctx, companyID, lockID, actorID, false)
}

func (s *periodLockService) RelockPeriod(ctx context.Context, companyID, lockID, actorID string) (*domain.PeriodLock, error) {
	return s.setLockState(ctx, companyID, lockID, actorID, true)
}

func (s *periodLockService) setLockState(ctx context.Context, companyID, lockID, actorID string, locked bool) (*domain.PeriodLock, error) {
	lock, err := s.lockRepo.FindPeriodLockByID(ctx, companyID, lockID)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, domain.StorageFailure("find period lock", err)
	}
	if lock.IsLocked == locked {
		return lock, nil
	}

	now := s.Now()
	if err := s.lockRepo.SetPeriodLockState(ctx, companyID, lockID, locked, actorID, now); err != nil {
		s.LogError(ctx, err, "Failed to change period lock state", slog.String("lock_id", lockID), slog.Bool("locked", locked))
		return nil, domain.StorageFailure("set period lock state", err)
	}
	lock.IsLocked = locked
	lock.LastUpdatedAt = now
	lock.LastUpdatedBy = actorID

	record := domain.AuditRecord{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    domain.AuditPeriodLock,
		TableName: periodLocksTable,
		RecordID:  lockID,
		Severity:  domain.SeverityInfo,
		Details:   periodDetails(*lock),
	}
	if !locked {
		record.Action = domain.AuditPeriodUnlock
		record.Severity = domain.SeverityAdminOverride
		s.LogWarn(ctx, "Closed period re-opened", slog.String("lock_id", lockID), slog.String("actor_id", actorID))
	}
	s.audit.Record(ctx, record)
	return lock, nil
}

func (s *periodLockService) ListLocks(ctx context.Context, companyID string) ([]domain.PeriodLock, error) {
	locks, err := s.lockRepo.ListPeriodLocks(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list period locks", slog.String("company_id", companyID))
		return nil, domain.StorageFailure("list period locks", err)
	}
	return locks, nil
}

// SuggestNextPeriod returns the day after the latest locked end through the end of that
// month, or the previous calendar month when nothing is locked.
func (s *periodLockService) SuggestNextPeriod(ctx context.Context, companyID string) (time.Time, time.Time, error) {
	latest, err := s.lockRepo.FindLatestLockedEnd(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find latest locked period", slog.String("company_id", companyID))
		return time.Time{}, time.Time{}, domain.StorageFailure("find latest locked period", err)
	}

	var start time.Time
	if latest != nil {
		start = domain.DateOnly(*latest).AddDate(0, 0, 1)
	} else {
		today := domain.DateOnly(s.Now())
		start = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	}
	end := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

func periodDetails(lock domain.PeriodLock) map[string]any {
	return map[string]any{
		"periodStart": lock.PeriodStart.Format(time.DateOnly),
		"periodEnd":   lock.PeriodEnd.Format(time.DateOnly),
		"isLocked":    lock.IsLocked,
	}
}
