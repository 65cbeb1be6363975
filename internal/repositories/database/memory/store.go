// Package memory provides an in-process implementation of the repository ports.
// It serializes every operation behind one mutex, which gives the same atomicity the
// pgsql repositories get from transactions.
package memory

import (
	"sync"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
)

// Store holds all ledger state in maps.
type Store struct {
	mu sync.Mutex

	accounts  map[string]domain.Account      // by account id
	entries   map[string]domain.JournalEntry // by entry id, lines included
	locks     map[string]domain.PeriodLock
	approvals map[string]domain.ApprovalRequest
	audit     []domain.AuditRecord

	invoices map[string]domain.SalesInvoice
	receipts map[string]domain.GoodsReceipt
	payments map[string]domain.Payment

	failures map[string]error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		entries:   make(map[string]domain.JournalEntry),
		locks:     make(map[string]domain.PeriodLock),
		approvals: make(map[string]domain.ApprovalRequest),
		invoices:  make(map[string]domain.SalesInvoice),
		receipts:  make(map[string]domain.GoodsReceipt),
		payments:  make(map[string]domain.Payment),
		failures:  make(map[string]error),
	}
}

// FailOn makes every later call of the named operation return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// failure must be called with mu held.
func (s *Store) failure(op string) error {
	return s.failures[op]
}

// NewRepositoryProvider exposes the store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:    s,
		JournalRepo:    s,
		PeriodLockRepo: s,
		ApprovalRepo:   s,
		AuditRepo:      s,
		DocumentRepo:   s,
		ReportingRepo:  s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade  = (*Store)(nil)
	_ portsrepo.PeriodLockRepository     = (*Store)(nil)
	_ portsrepo.ApprovalRepositoryFacade = (*Store)(nil)
	_ portsrepo.AuditRepository          = (*Store)(nil)
	_ portsrepo.DocumentSource           = (*Store)(nil)
	_ portsrepo.ReportingRepository      = (*Store)(nil)
)
