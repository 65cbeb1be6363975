package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

func (s *Store) FindAccountByID(_ context.Context, companyID, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("FindAccountByID"); err != nil {
		return nil, err
	}
	acc, ok := s.accounts[accountID]
	if !ok || acc.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *Store) FindAccountByCode(_ context.Context, companyID, code string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accountByCode(companyID, code); ok {
		return &acc, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListAccounts(_ context.Context, companyID string) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ListAccounts"); err != nil {
		return nil, err
	}
	accounts := []domain.Account{}
	for _, acc := range s.accounts {
		if acc.CompanyID == companyID {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SaveAccount"); err != nil {
		return err
	}
	if _, exists := s.accountByCode(account.CompanyID, account.Code); exists {
		return fmt.Errorf("%w: code %s", domain.ErrDuplicateAccountCode, account.Code)
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) InsertAccountIfAbsent(_ context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertAccountIfAbsent"); err != nil {
		return nil, err
	}
	if existing, ok := s.accountByCode(account.CompanyID, account.Code); ok {
		return &existing, nil
	}
	s.accounts[account.AccountID] = account
	return &account, nil
}

func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[account.AccountID]
	if !ok || current.CompanyID != account.CompanyID {
		return apperrors.ErrNotFound
	}
	current.Name = account.Name
	current.AccountType = account.AccountType
	current.ParentAccountID = account.ParentAccountID
	current.LastUpdatedAt = account.LastUpdatedAt
	current.LastUpdatedBy = account.LastUpdatedBy
	s.accounts[account.AccountID] = current
	return nil
}

// accountByCode must be called with mu held.
func (s *Store) accountByCode(companyID, code string) (domain.Account, bool) {
	for _, acc := range s.accounts {
		if acc.CompanyID == companyID && acc.Code == code {
			return acc, true
		}
	}
	return domain.Account{}, false
}
