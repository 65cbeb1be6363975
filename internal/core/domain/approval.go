package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus is the state of an approval request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Approval module tags.
const (
	ModuleJournalEntry    = "JOURNAL_ENTRY"
	ModulePayment         = "PAYMENT"
	ModulePurchaseOrder   = "PURCHASE_ORDER"
	ModuleSalesInvoice    = "SALES_INVOICE"
	ModuleStockAdjustment = "STOCK_ADJUSTMENT"
)

// ApprovalRequest records a request for a second party's sign-off.
// It moves out of PENDING exactly once.
type ApprovalRequest struct {
	RequestID   string         `json:"requestID"`
	CompanyID   string         `json:"companyID"`
	Module      string         `json:"module"`
	RecordID    string         `json:"recordID"`
	Status      ApprovalStatus `json:"status"`
	RequestedBy string         `json:"requestedBy"`
	RequestedAt time.Time      `json:"requestedAt"`
	DecidedBy   *string        `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time     `json:"decidedAt,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

// ApprovalRule is one row of the approval policy table.
// Always takes precedence over Threshold.
type ApprovalRule struct {
	Always    bool
	Threshold decimal.Decimal
}

// ApprovalPolicy maps module tags to their rule. Modules not present never require approval.
type ApprovalPolicy map[string]ApprovalRule

// Requires reports whether an action in module for amount needs approval.
// A threshold module with an unknown amount requires approval.
func (p ApprovalPolicy) Requires(module string, amount *decimal.Decimal) bool {
	rule, ok := p[module]
	if !ok {
		return false
	}
	if rule.Always {
		return true
	}
	if amount == nil {
		return true
	}
	return amount.GreaterThan(rule.Threshold)
}

// DefaultApprovalPolicy is used when no policy is configured.
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		ModuleJournalEntry:    {Always: true},
		ModuleStockAdjustment: {Always: true},
		ModulePayment:         {Threshold: decimal.NewFromInt(10000)},
		ModulePurchaseOrder:   {Threshold: decimal.NewFromInt(50000)},
	}
}

// PolicyFor lets a single table serve every company.
func (p ApprovalPolicy) PolicyFor(string) ApprovalPolicy {
	return p
}
