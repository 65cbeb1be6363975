package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/SscSPs/erp_ledger_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 50

func (s *Store) FindJournalEntryByID(_ context.Context, companyID, entryID string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("FindJournalEntryByID"); err != nil {
		return nil, err
	}
	e, ok := s.entries[entryID]
	if !ok || e.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return &e, nil
}

func (s *Store) FindReversalOf(_ context.Context, companyID, entryID string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.CompanyID == companyID && e.ReversesEntryID != nil && *e.ReversesEntryID == entryID {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListJournalEntries(_ context.Context, companyID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	s.mu.Lock()
	var all []domain.JournalEntry
	for _, e := range s.entries {
		if e.CompanyID != companyID {
			continue
		}
		if cursor != nil && !cursor.After(e.EntryDate, e.CreatedAt, e.EntryID) {
			continue
		}
		e.Lines = nil
		all = append(all, e)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.EntryID > b.EntryID
	})

	if len(all) <= limit {
		return all, nil, nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
	return page, &token, nil
}

func (s *Store) SaveJournalEntries(_ context.Context, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SaveJournalEntries"); err != nil {
		return err
	}

	// Validate everything before touching state so a failure leaves nothing behind.
	pendingReversals := make(map[string]bool)
	pendingKeys := make(map[string]bool)
	for _, e := range entries {
		if s.lockedOn(e.CompanyID, e.EntryDate) {
			return fmt.Errorf("%w: %s", domain.ErrPeriodClosed, e.EntryDate.Format(time.DateOnly))
		}
		if key, ok := e.PostingKey(); ok {
			if pendingKeys[key] || s.hasPosting(key) {
				return fmt.Errorf("%w: %s %s", domain.ErrDuplicatePosting, e.Source.Module, e.Source.DocumentKey())
			}
			pendingKeys[key] = true
		}
		for _, l := range e.Lines {
			acc, ok := s.accounts[l.AccountID]
			if !ok || acc.CompanyID != e.CompanyID {
				return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, l.AccountID)
			}
		}
		if e.ReversesEntryID != nil {
			target := *e.ReversesEntryID
			if pendingReversals[target] || s.hasReversal(target) {
				return fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, target)
			}
			pendingReversals[target] = true
		}
	}
	for accountID := range balanceChanges {
		if _, ok := s.accounts[accountID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, accountID)
		}
	}

	for _, e := range entries {
		e.Lines = append([]domain.JournalLine(nil), e.Lines...)
		s.entries[e.EntryID] = e
	}
	for accountID, delta := range balanceChanges {
		acc := s.accounts[accountID]
		acc.Balance = acc.Balance.Add(delta)
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = actorID
		s.accounts[accountID] = acc
	}
	return nil
}

// hasReversal must be called with mu held.
func (s *Store) hasReversal(entryID string) bool {
	for _, e := range s.entries {
		if e.ReversesEntryID != nil && *e.ReversesEntryID == entryID {
			return true
		}
	}
	return false
}

// hasPosting must be called with mu held.
func (s *Store) hasPosting(key string) bool {
	for _, e := range s.entries {
		if k, ok := e.PostingKey(); ok && k == key {
			return true
		}
	}
	return false
}

// lockedOn must be called with mu held.
func (s *Store) lockedOn(companyID string, date time.Time) bool {
	for _, l := range s.locks {
		if l.CompanyID == companyID && l.IsLocked && l.Contains(date) {
			return true
		}
	}
	return false
}
