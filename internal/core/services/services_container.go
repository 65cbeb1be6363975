package services

import (
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...Option) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first: the lock guard and the approval gate both write to it.
	container.Audit = NewAuditService(repos.AuditRepo, opts...)
	container.Account = NewAccountService(repos.AccountRepo, opts...)
	container.PeriodLock = NewPeriodLockService(repos.PeriodLockRepo, container.Audit, opts...)
	container.Approval = NewApprovalService(repos.ApprovalRepo, container.Audit, cfg, cfg.ApprovalAllowDuplicates, opts...)
	container.Ledger = NewLedgerService(repos.JournalRepo, container.PeriodLock, container.Approval, cfg.BalanceTolerance, opts...)
	container.AutoPost = NewAutoPostService(container.Account, container.Ledger, repos.DocumentRepo, opts...)
	container.Reporting = NewReportingService(repos.AccountRepo, repos.ReportingRepo, cfg.LiquidAccountPrefixes, opts...)

	return container
}
