package dto

import (
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// CreateApprovalRequest raises an approval request for a business record.
type CreateApprovalRequest struct {
	Module   string `json:"module" binding:"required,uppercase,max=64"`
	RecordID string `json:"recordID" binding:"required,max=64"`
}

// DecideApprovalRequest records a decision on a pending request.
type DecideApprovalRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Reason  string `json:"reason" binding:"max=500"`
}

// ApprovalStatusResponse answers whether a record is cleared to proceed.
type ApprovalStatusResponse struct {
	Module   string `json:"module"`
	RecordID string `json:"recordID"`
	Approved bool   `json:"approved"`
}

// ListApprovalRequestsResponse wraps pending requests.
type ListApprovalRequestsResponse struct {
	Requests []domain.ApprovalRequest `json:"requests"`
}
