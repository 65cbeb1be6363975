package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

func (s *Store) HasLockedPeriod(_ context.Context, companyID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("HasLockedPeriod"); err != nil {
		return false, err
	}
	return s.lockedOn(companyID, date), nil
}

func (s *Store) SavePeriodLock(_ context.Context, lock domain.PeriodLock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SavePeriodLock"); err != nil {
		return err
	}
	s.locks[lock.LockID] = lock
	return nil
}

func (s *Store) FindPeriodLockByID(_ context.Context, companyID, lockID string) (*domain.PeriodLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[lockID]
	if !ok || l.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return &l, nil
}

func (s *Store) SetPeriodLockState(_ context.Context, companyID, lockID string, locked bool, actorID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SetPeriodLockState"); err != nil {
		return err
	}
	l, ok := s.locks[lockID]
	if !ok || l.CompanyID != companyID {
		return apperrors.ErrNotFound
	}
	l.IsLocked = locked
	l.LastUpdatedAt = now
	l.LastUpdatedBy = actorID
	s.locks[lockID] = l
	return nil
}

func (s *Store) ListPeriodLocks(_ context.Context, companyID string) ([]domain.PeriodLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	locks := []domain.PeriodLock{}
	for _, l := range s.locks {
		if l.CompanyID == companyID {
			locks = append(locks, l)
		}
	}
	sort.Slice(locks, func(i, j int) bool { return locks[i].PeriodStart.Before(locks[j].PeriodStart) })
	return locks, nil
}

func (s *Store) FindLatestLockedEnd(_ context.Context, companyID string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("FindLatestLockedEnd"); err != nil {
		return nil, err
	}
	var latest *time.Time
	for _, l := range s.locks {
		if l.CompanyID != companyID || !l.IsLocked {
			continue
		}
		if latest == nil || l.PeriodEnd.After(*latest) {
			end := l.PeriodEnd
			latest = &end
		}
	}
	return latest, nil
}
