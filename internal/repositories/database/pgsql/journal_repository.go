package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 50

// Unique partial indexes on journal_entries.
const (
	reversesEntryConstraint = "journal_entries_reverses_entry_id_key"
	postingKeyConstraint    = "journal_entries_source_posting_key"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// SaveJournalEntries inserts the entries and their lines and applies the balance changes in one
// transaction. Accounts are locked in id order so concurrent postings cannot deadlock.
// Period locks are re-checked under a shared company lock that lock changes take exclusively,
// so a period closed after the service-level check still rejects the entry.
func (r *PgxJournalRepository) SaveJournalEntries(ctx context.Context, entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	if len(entries) == 0 {
		return nil
	}
	companyID := entries[0].CompanyID

	accountIDs := referencedAccounts(entries, balanceChanges)

	return r.inTx(ctx, func(tx pgx.Tx) error {
		// 1. Re-check closed periods
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock_shared(hashtext($1));`, periodLockKey(companyID)); err != nil {
			return fmt.Errorf("failed to lock periods: %w", err)
		}
		var closed *time.Time
		err := tx.QueryRow(ctx, `
			SELECT MIN(d.day) FROM period_locks p
			JOIN unnest($2::date[]) AS d(day) ON d.day BETWEEN p.period_start AND p.period_end
			WHERE p.company_id = $1 AND p.is_locked;`, companyID, entryDates(entries)).Scan(&closed)
		if err != nil {
			return fmt.Errorf("failed to check period locks: %w", err)
		}
		if closed != nil {
			return fmt.Errorf("%w: %s", domain.ErrPeriodClosed, closed.Format(time.DateOnly))
		}

		// 2. Lock every referenced account and make sure it belongs to the company
		rows, err := tx.Query(ctx, `
			SELECT account_id FROM accounts
			WHERE company_id = $1 AND account_id = ANY($2)
			ORDER BY account_id
			FOR UPDATE;`, companyID, accountIDs)
		if err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}
		locked, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}
		if len(locked) != len(accountIDs) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, missingAccount(accountIDs, locked))
		}

		// 3. Insert entry headers and lines
		batch := &pgx.Batch{}
		for _, e := range entries {
			var module, recordID, documentID *string
			var role string
			var amount *decimal.Decimal
			if e.Source != nil {
				module, recordID, amount = &e.Source.Module, &e.Source.RecordID, e.Source.Amount
				documentID, role = nullIfEmpty(e.Source.DocumentKey()), e.Source.Role
			}
			batch.Queue(`
				INSERT INTO journal_entries (entry_id, company_id, entry_number, entry_date, description, reference,
					total_debit, total_credit, posted, reverses_entry_id, source_module, source_record_id, source_amount,
					source_document_id, source_role, created_at, created_by, last_updated_at, last_updated_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);`,
				e.EntryID, e.CompanyID, e.EntryNumber, e.EntryDate, e.Description, e.Reference,
				e.TotalDebit, e.TotalCredit, e.Posted, e.ReversesEntryID, module, recordID, amount,
				documentID, role, e.CreatedAt, e.CreatedBy, e.LastUpdatedAt, e.LastUpdatedBy,
			)
			for _, l := range e.Lines {
				batch.Queue(`
					INSERT INTO journal_lines (line_id, entry_id, line_no, account_id, debit, credit, description)
					VALUES ($1, $2, $3, $4, $5, $6, $7);`,
					l.LineID, l.EntryID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.Description,
				)
			}
		}

		// 4. Apply balance changes
		for _, accountID := range accountIDs {
			delta, ok := balanceChanges[accountID]
			if !ok || delta.IsZero() {
				continue
			}
			batch.Queue(`
				UPDATE accounts SET balance = balance + $1, last_updated_at = $2, last_updated_by = $3
				WHERE account_id = $4;`,
				delta, now, actorID, accountID,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if code, constraint := pgErrorCode(err); code == pgUniqueViolation {
				switch constraint {
				case reversesEntryConstraint:
					return domain.ErrAlreadyReversed
				case postingKeyConstraint:
					return domain.ErrDuplicatePosting
				}
			}
			return fmt.Errorf("failed to write journal entries: %w", err)
		}
		return nil
	})
}

// periodLockKey is the advisory lock key shared by postings and period lock changes of a company.
func periodLockKey(companyID string) string {
	return "period_locks|" + companyID
}

func entryDates(entries []domain.JournalEntry) []time.Time {
	dates := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.EntryDate)
	}
	return dates
}

// referencedAccounts returns the sorted, de-duplicated account ids touched by the entries.
func referencedAccounts(entries []domain.JournalEntry, balanceChanges map[string]decimal.Decimal) []string {
	seen := make(map[string]bool)
	for accountID := range balanceChanges {
		seen[accountID] = true
	}
	for _, e := range entries {
		for _, l := range e.Lines {
			seen[l.AccountID] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func missingAccount(want, got []string) string {
	found := make(map[string]bool, len(got))
	for _, id := range got {
		found[id] = true
	}
	for _, id := range want {
		if !found[id] {
			return id
		}
	}
	return ""
}

const entryColumns = `entry_id, company_id, entry_number, entry_date, description, reference,
	total_debit, total_credit, posted, reverses_entry_id, source_module, source_record_id, source_amount,
	source_document_id, source_role, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var module, recordID, documentID *string
	var role string
	var amount decimal.NullDecimal
	err := row.Scan(
		&e.EntryID, &e.CompanyID, &e.EntryNumber, &e.EntryDate, &e.Description, &e.Reference,
		&e.TotalDebit, &e.TotalCredit, &e.Posted, &e.ReversesEntryID, &module, &recordID, &amount,
		&documentID, &role, &e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	e.EntryDate = domain.DateOnly(e.EntryDate)
	if module != nil {
		e.Source = &domain.SourceRef{Module: *module, RecordID: valueOrEmpty(recordID), Role: role}
		if doc := valueOrEmpty(documentID); doc != e.Source.RecordID {
			e.Source.DocumentID = doc
		}
		if amount.Valid {
			e.Source.Amount = &amount.Decimal
		}
	}
	return &e, nil
}

// FindJournalEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindJournalEntryByID(ctx context.Context, companyID, entryID string) (*domain.JournalEntry, error) {
	entry, err := scanEntry(r.Pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE company_id = $1 AND entry_id = $2;`, companyID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT line_id, entry_id, line_no, account_id, debit, credit, description
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_no;`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for journal entry %s: %w", entryID, err)
	}
	defer rows.Close()

	entry.Lines = []domain.JournalLine{}
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNo, &l.AccountID, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, fmt.Errorf("failed to scan line for journal entry %s: %w", entryID, err)
		}
		entry.Lines = append(entry.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lines for journal entry %s: %w", entryID, err)
	}
	return entry, nil
}

// FindReversalOf returns the entry that reverses entryID.
func (r *PgxJournalRepository) FindReversalOf(ctx context.Context, companyID, entryID string) (*domain.JournalEntry, error) {
	entry, err := scanEntry(r.Pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE company_id = $1 AND reverses_entry_id = $2;`, companyID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reversal of %s: %w", entryID, err)
	}
	return entry, nil
}

// ListJournalEntries retrieves entry headers newest first using token-based pagination.
func (r *PgxJournalRepository) ListJournalEntries(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE company_id = $1`
	args := []any{companyID}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %w", apperrors.ErrValidation, err)
		}
		// Tuple comparison keeps the order stable across equal dates
		query += ` AND (entry_date, created_at, entry_id) < ($2, $3, $4)`
		args = append(args, cursor.EntryDate, cursor.CreatedAt, cursor.ID)
	}
	query += ` ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries for company %s: %w", companyID, err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	page := entries[:limit]
	last := page[limit-1]
	token := pagination.EncodeToken(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
	return page, &token, nil
}
