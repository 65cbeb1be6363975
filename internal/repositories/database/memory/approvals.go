package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

func (s *Store) FindApprovalRequestByID(_ context.Context, companyID, requestID string) (*domain.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.approvals[requestID]
	if !ok || r.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ExistsApprovedRequest(_ context.Context, companyID, module, recordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ExistsApprovedRequest"); err != nil {
		return false, err
	}
	for _, r := range s.approvals {
		if r.CompanyID == companyID && r.Module == module && r.RecordID == recordID && r.Status == domain.ApprovalApproved {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListApprovalRequestsByStatus(_ context.Context, companyID string, status domain.ApprovalStatus) ([]domain.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := []domain.ApprovalRequest{}
	for _, r := range s.approvals {
		if r.CompanyID == companyID && r.Status == status {
			reqs = append(reqs, r)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].RequestedAt.Before(reqs[j].RequestedAt) })
	return reqs, nil
}

func (s *Store) SaveApprovalRequest(_ context.Context, req domain.ApprovalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SaveApprovalRequest"); err != nil {
		return err
	}
	s.approvals[req.RequestID] = req
	return nil
}

func (s *Store) SaveApprovalRequestIfNoneOpen(_ context.Context, req domain.ApprovalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("SaveApprovalRequest"); err != nil {
		return err
	}
	for _, r := range s.approvals {
		if r.CompanyID == req.CompanyID && r.Module == req.Module && r.RecordID == req.RecordID &&
			(r.Status == domain.ApprovalPending || r.Status == domain.ApprovalApproved) {
			return fmt.Errorf("%w: %s/%s is %s", domain.ErrDuplicateRequest, req.Module, req.RecordID, r.Status)
		}
	}
	s.approvals[req.RequestID] = req
	return nil
}

func (s *Store) DecideApprovalRequest(_ context.Context, companyID, requestID string, status domain.ApprovalStatus, deciderID, reason string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DecideApprovalRequest"); err != nil {
		return false, err
	}
	r, ok := s.approvals[requestID]
	if !ok || r.CompanyID != companyID {
		return false, apperrors.ErrNotFound
	}
	if r.Status != domain.ApprovalPending {
		return false, nil
	}
	r.Status = status
	r.DecidedBy = &deciderID
	r.DecidedAt = &now
	r.Reason = reason
	s.approvals[requestID] = r
	return true, nil
}
