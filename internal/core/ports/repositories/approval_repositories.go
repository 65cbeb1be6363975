package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// ApprovalReader defines read operations for approval requests
type ApprovalReader interface {
	FindApprovalRequestByID(ctx context.Context, companyID, requestID string) (*domain.ApprovalRequest, error)

	// ExistsApprovedRequest reports whether (company, module, record) has an approved request.
	ExistsApprovedRequest(ctx context.Context, companyID, module, recordID string) (bool, error)

	// ListApprovalRequestsByStatus returns requests oldest first.
	ListApprovalRequestsByStatus(ctx context.Context, companyID string, status domain.ApprovalStatus) ([]domain.ApprovalRequest, error)
}

// ApprovalWriter defines write operations for approval requests
type ApprovalWriter interface {
	SaveApprovalRequest(ctx context.Context, req domain.ApprovalRequest) error

	// SaveApprovalRequestIfNoneOpen saves req unless a pending or approved request exists for
	// the same key, in which case domain.ErrDuplicateRequest is returned. The check and the
	// insert are serialized per key.
	SaveApprovalRequestIfNoneOpen(ctx context.Context, req domain.ApprovalRequest) error

	// DecideApprovalRequest moves a pending request to status. It returns false when the
	// request was no longer pending.
	DecideApprovalRequest(ctx context.Context, companyID, requestID string, status domain.ApprovalStatus, deciderID, reason string, now time.Time) (bool, error)
}

// ApprovalRepositoryFacade combines all approval-related repository interfaces
type ApprovalRepositoryFacade interface {
	ApprovalReader
	ApprovalWriter
}
