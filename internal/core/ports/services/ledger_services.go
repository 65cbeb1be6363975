package services

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
)

// LedgerReaderSvc defines read operations for journal data
type LedgerReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines.
	GetJournalEntry(ctx context.Context, companyID, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entry headers, newest first.
	ListJournalEntries(ctx context.Context, companyID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// LedgerPosterSvc defines the posting operations
type LedgerPosterSvc interface {
	// PostJournalEntry validates and commits one balanced entry.
	PostJournalEntry(ctx context.Context, req domain.PostJournalRequest) (*domain.JournalEntry, error)

	// PostJournalEntries validates every request and commits them all or none.
	PostJournalEntries(ctx context.Context, reqs []domain.PostJournalRequest) ([]domain.JournalEntry, error)

	// PostReversingEntry posts an offsetting entry for an existing one. A nil date reuses
	// the original entry date.
	PostReversingEntry(ctx context.Context, companyID, entryID string, date *time.Time, actorID string) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerPosterSvc
}
