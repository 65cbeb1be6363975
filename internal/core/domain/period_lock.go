package domain

import "time"

// PeriodLock represents a closed accounting period for a company.
// Unlocking keeps the record and clears IsLocked.
type PeriodLock struct {
	LockID      string    `json:"lockID"`
	CompanyID   string    `json:"companyID"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	IsLocked    bool      `json:"isLocked"`
	AuditFields
}

// Contains reports whether date falls inside the lock range, inclusive on both ends.
func (p PeriodLock) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(p.PeriodStart)) && !d.After(DateOnly(p.PeriodEnd))
}
