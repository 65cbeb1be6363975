package pgsql

import (
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:    newPgxAccountRepository(dbPool),
		JournalRepo:    newPgxJournalRepository(dbPool),
		PeriodLockRepo: newPgxPeriodLockRepository(dbPool),
		ApprovalRepo:   newPgxApprovalRepository(dbPool),
		AuditRepo:      newPgxAuditRepository(dbPool),
		DocumentRepo:   newPgxDocumentRepository(dbPool),
		ReportingRepo:  newReportingRepository(dbPool),
	}
}
