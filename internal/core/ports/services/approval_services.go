package services

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApprovalChecker is the read side consulted before privileged effects.
type ApprovalChecker interface {
	// IsApprovalRequired is a pure policy lookup for the company.
	IsApprovalRequired(companyID, module string, amount *decimal.Decimal) bool

	// IsApproved reports whether the exact (company, module, record) key has an approved request.
	IsApproved(ctx context.Context, companyID, module, recordID string) (bool, error)
}

// ApprovalSvc records approval requests and decisions.
type ApprovalSvc interface {
	ApprovalChecker

	RequestApproval(ctx context.Context, companyID, module, recordID, requesterID string) (*domain.ApprovalRequest, error)

	// Decide moves a pending request to approved or rejected, exactly once.
	Decide(ctx context.Context, companyID, requestID, deciderID string, approve bool, reason string) (*domain.ApprovalRequest, error)

	ListPending(ctx context.Context, companyID string) ([]domain.ApprovalRequest, error)
}
