package memory

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

func (s *Store) InsertAuditRecord(_ context.Context, record domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertAuditRecord"); err != nil {
		return err
	}
	s.audit = append(s.audit, record)
	return nil
}

// AuditRecords returns a copy of every record written so far, in insertion order.
func (s *Store) AuditRecords() []domain.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditRecord(nil), s.audit...)
}
