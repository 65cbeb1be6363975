package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents an entry in a company's chart of accounts.
// Balance follows the net-debit convention: debits minus credits posted against it.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (UUID)
	CompanyID       string          `json:"companyID"`       // Owning company (NON-NULL)
	Code            string          `json:"code"`            // Unique per company, immutable
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	ParentAccountID string          `json:"parentAccountID"` // Nullable FK -> accounts.account_id (Self-referencing)
	AuditFields                     // Embed CreatedAt, CreatedBy, etc.
	Balance         decimal.Decimal `json:"balance"`
}
