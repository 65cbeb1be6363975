package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

func (s *Store) SumLinesByAccount(_ context.Context, companyID string, filter domain.ActivityFilter) ([]domain.AccountActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SumLinesByAccount"); err != nil {
		return nil, err
	}

	sums := make(map[string]*domain.AccountActivity)
	for _, e := range s.entries {
		if e.CompanyID != companyID || !e.Posted {
			continue
		}
		if filter.From != nil && e.EntryDate.Before(domain.DateOnly(*filter.From)) {
			continue
		}
		if filter.To != nil && e.EntryDate.After(domain.DateOnly(*filter.To)) {
			continue
		}
		for _, l := range e.Lines {
			a, ok := sums[l.AccountID]
			if !ok {
				a = &domain.AccountActivity{AccountID: l.AccountID}
				sums[l.AccountID] = a
			}
			a.Debit = a.Debit.Add(l.Debit)
			a.Credit = a.Credit.Add(l.Credit)
		}
	}

	activity := make([]domain.AccountActivity, 0, len(sums))
	for _, a := range sums {
		activity = append(activity, *a)
	}
	sort.Slice(activity, func(i, j int) bool { return activity[i].AccountID < activity[j].AccountID })
	return activity, nil
}
