package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalEntryByID retrieves an entry of the company with its lines.
	FindJournalEntryByID(ctx context.Context, companyID, entryID string) (*domain.JournalEntry, error)

	// FindReversalOf returns the entry reversing entryID, or apperrors.ErrNotFound.
	FindReversalOf(ctx context.Context, companyID, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves entry headers newest first using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListJournalEntries(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournalEntries persists the entries with their lines and applies balanceChanges
	// (net debit per account) in a single transaction. Nothing is written when any step fails.
	// An account missing from the company yields domain.ErrUnknownAccount.
	SaveJournalEntries(ctx context.Context, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
