package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const approvalRequestsTable = "approval_requests"

// PolicySource resolves the approval policy table of a company.
type PolicySource interface {
	PolicyFor(companyID string) domain.ApprovalPolicy
}

type approvalService struct {
	BaseService
	approvalRepo    portsrepo.ApprovalRepositoryFacade
	audit           portssvc.AuditSvc
	policies        PolicySource
	allowDuplicates bool
}

// NewApprovalService creates the approval gate. When allowDuplicates is false a new request
// is refused while a pending or approved one exists for the same record.
func NewApprovalService(approvalRepo portsrepo.ApprovalRepositoryFacade, audit portssvc.AuditSvc, policies PolicySource, allowDuplicates bool, opts ...Option) portssvc.ApprovalSvc {
	if policies == nil {
		policies = domain.DefaultApprovalPolicy()
	}
	return &approvalService{
		BaseService:     newBaseService(opts),
		approvalRepo:    approvalRepo,
		audit:           audit,
		policies:        policies,
		allowDuplicates: allowDuplicates,
	}
}

var _ portssvc.ApprovalSvc = (*approvalService)(nil)

func (s *approvalService) IsApprovalRequired(companyID, module string, amount *decimal.Decimal) bool {
	return s.policies.PolicyFor(companyID).Requires(module, amount)
}

func (s *approvalService) IsApproved(ctx context.Context, companyID, module, recordID string) (bool, error) {
	ok, err := s.approvalRepo.ExistsApprovedRequest(ctx, companyID, module, recordID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check approval", slog.String("module", module), slog.String("record_id", recordID))
		return false, domain.StorageFailure("check approval", err)
	}
	return ok, nil
}

func (s *approvalService) RequestApproval(ctx context.Context, companyID, module, recordID, requesterID string) (*domain.ApprovalRequest, error) {
	if companyID == "" || module == "" || recordID == "" || requesterID == "" {
		return nil, fmt.Errorf("%w: company, module, record and requester are required", apperrors.ErrValidation)
	}

	req := domain.ApprovalRequest{
		RequestID:   uuid.NewString(),
		CompanyID:   companyID,
		Module:      module,
		RecordID:    recordID,
		Status:      domain.ApprovalPending,
		RequestedBy: requesterID,
		RequestedAt: s.Now(),
	}

	var err error
	if s.allowDuplicates {
		err = s.approvalRepo.SaveApprovalRequest(ctx, req)
	} else {
		err = s.approvalRepo.SaveApprovalRequestIfNoneOpen(ctx, req)
	}
	if err != nil {
		if isDuplicate(err) {
			s.LogWarn(ctx, "Approval already requested", slog.String("module", module), slog.String("record_id", recordID))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save approval request", slog.String("module", module), slog.String("record_id", recordID))
		return nil, domain.StorageFailure("save approval request", err)
	}

	s.LogInfo(ctx, "Approval requested", slog.String("request_id", req.RequestID), slog.String("module", module), slog.String("record_id", recordID))
	return &req, nil
}

func (s *approvalService) Decide(ctx context.Context, companyID, requestID, deciderID string, approve bool, reason string) (*domain.ApprovalRequest, error) {
	if deciderID == "" {
		return nil, fmt.Errorf("%w: decider is required", apperrors.ErrValidation)
	}
	req, err := s.approvalRepo.FindApprovalRequestByID(ctx, companyID, requestID)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		return nil, domain.StorageFailure("find approval request", err)
	}
	if req.Status != domain.ApprovalPending {
		return nil, fmt.Errorf("%w: request %s is %s", domain.ErrAlreadyDecided, requestID, req.Status)
	}
	if req.RequestedBy == deciderID {
		return nil, domain.ErrSelfApprovalForbidden
	}

	status, action := domain.ApprovalRejected, domain.AuditApprovalRejected
	if approve {
		status, action = domain.ApprovalApproved, domain.AuditApprovalApproved
	}

	now := s.Now()
	won, err := s.approvalRepo.DecideApprovalRequest(ctx, companyID, requestID, status, deciderID, reason, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to record approval decision", slog.String("request_id", requestID))
		return nil, domain.StorageFailure("decide approval request", err)
	}
	if !won {
		// Another decider got there first.
		return nil, fmt.Errorf("%w: request %s", domain.ErrAlreadyDecided, requestID)
	}

	req.Status = status
	req.DecidedBy = &deciderID
	req.DecidedAt = &now
	req.Reason = reason

	s.audit.Record(ctx, domain.AuditRecord{
		CompanyID: companyID,
		ActorID:   deciderID,
		Action:    action,
		TableName: approvalRequestsTable,
		RecordID:  requestID,
		Details: map[string]any{
			"module":      req.Module,
			"recordID":    req.RecordID,
			"requestedBy": req.RequestedBy,
			"reason":      reason,
		},
	})
	s.LogInfo(ctx, "Approval decided", slog.String("request_id", requestID), slog.String("status", string(status)))
	return req, nil
}

func (s *approvalService) ListPending(ctx context.Context, companyID string) ([]domain.ApprovalRequest, error) {
	reqs, err := s.approvalRepo.ListApprovalRequestsByStatus(ctx, companyID, domain.ApprovalPending)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending approvals", slog.String("company_id", companyID))
		return nil, domain.StorageFailure("list approval requests", err)
	}
	return reqs, nil
}
