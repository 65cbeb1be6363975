package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo    AccountRepositoryFacade
	JournalRepo    JournalRepositoryFacade
	PeriodLockRepo PeriodLockRepository
	ApprovalRepo   ApprovalRepositoryFacade
	AuditRepo      AuditRepository
	DocumentRepo   DocumentSource
	ReportingRepo  ReportingRepository
}
