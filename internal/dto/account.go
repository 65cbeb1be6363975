package dto

import (
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=32"`
	Name            string             `json:"name" binding:"required,max=255"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
}

// UpdateAccountRequest defines the data allowed for updating an account.
// The account code is not editable.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name            *string             `json:"name" binding:"omitempty,min=1,max=255"`
	AccountType     *domain.AccountType `json:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentAccountID *string             `json:"parentAccountID"` // Empty string clears the parent
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	CompanyID       string             `json:"companyID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	ParentAccountID string             `json:"parentAccountID,omitempty"`
	Balance         decimal.Decimal    `json:"balance"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ListAccountsResponse wraps the chart of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		CompanyID:       acc.CompanyID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		ParentAccountID: acc.ParentAccountID,
		Balance:         acc.Balance,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountsResponse converts a slice of domain.Account to ListAccountsResponse.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	list := make([]AccountResponse, len(accounts))
	for i := range accounts {
		list[i] = ToAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: list}
}
