package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account of the company by its identifier.
	// Accounts of other companies are reported as not found.
	FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account of the company by its code.
	FindAccountByCode(ctx context.Context, companyID, code string) (*domain.Account, error)

	// ListAccounts retrieves every account of the company ordered by code.
	ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A code already used by the company yields
	// domain.ErrDuplicateAccountCode.
	SaveAccount(ctx context.Context, account domain.Account) error

	// InsertAccountIfAbsent inserts the account unless (company, code) exists and returns
	// whichever row owns the code afterwards.
	InsertAccountIfAbsent(ctx context.Context, account domain.Account) (*domain.Account, error)

	// UpdateAccount updates name, type and parent. Code and balance are left untouched.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
