package services

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// ListAccounts retrieves the company's chart of accounts ordered by code.
	ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error)

	// GetAccount retrieves a specific account of the company.
	GetAccount(ctx context.Context, companyID, accountID string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account with a zero balance.
	CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)

	// UpdateAccount changes name, type or parent. The code cannot change.
	UpdateAccount(ctx context.Context, companyID, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error)

	// GetOrCreateStandardAccount returns the account with the given code, creating it with
	// a zero balance if absent. Safe under concurrent calls for the same code.
	GetOrCreateStandardAccount(ctx context.Context, companyID, code, name string, accountType domain.AccountType, actorID string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
