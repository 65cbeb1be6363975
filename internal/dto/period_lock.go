package dto

import (
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// LockPeriodRequest closes a date range.
type LockPeriodRequest struct {
	PeriodStart time.Time `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time `json:"periodEnd" binding:"required"`
}

// PeriodLockResponse defines the data returned for a period lock.
type PeriodLockResponse struct {
	LockID      string    `json:"lockID"`
	PeriodStart string    `json:"periodStart"`
	PeriodEnd   string    `json:"periodEnd"`
	IsLocked    bool      `json:"isLocked"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

// DateLockedResponse answers a date check.
type DateLockedResponse struct {
	Date   string `json:"date"`
	Locked bool   `json:"locked"`
}

// SuggestedPeriodResponse is the next period a company would close.
type SuggestedPeriodResponse struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

// ToPeriodLockResponse converts a domain.PeriodLock to PeriodLockResponse DTO.
func ToPeriodLockResponse(l *domain.PeriodLock) PeriodLockResponse {
	return PeriodLockResponse{
		LockID:      l.LockID,
		PeriodStart: l.PeriodStart.Format(time.DateOnly),
		PeriodEnd:   l.PeriodEnd.Format(time.DateOnly),
		IsLocked:    l.IsLocked,
		CreatedAt:   l.CreatedAt,
		CreatedBy:   l.CreatedBy,
	}
}

// ToPeriodLockResponses converts a slice of locks.
func ToPeriodLockResponses(locks []domain.PeriodLock) []PeriodLockResponse {
	responses := make([]PeriodLockResponse, len(locks))
	for i := range locks {
		responses[i] = ToPeriodLockResponse(&locks[i])
	}
	return responses
}
