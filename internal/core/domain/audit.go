package domain

import "time"

// Audit action tags.
const (
	AuditPeriodLock       = "PERIOD_LOCK"
	AuditPeriodUnlock     = "PERIOD_UNLOCK"
	AuditApprovalApproved = "APPROVAL_APPROVED"
	AuditApprovalRejected = "APPROVAL_REJECTED"
)

// Audit severities.
const (
	SeverityInfo          = "INFO"
	SeverityAdminOverride = "ADMIN_OVERRIDE"
)

// AuditRecord is one privileged-action record handed to the audit sink.
type AuditRecord struct {
	AuditID   string         `json:"auditID"`
	CompanyID string         `json:"companyID"`
	ActorID   string         `json:"actorID"`
	Action    string         `json:"action"`
	TableName string         `json:"tableName"`
	RecordID  string         `json:"recordID"`
	Severity  string         `json:"severity"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
}
