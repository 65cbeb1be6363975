package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/SscSPs/erp_ledger_engine/internal/core/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/SscSPs/erp_ledger_engine/internal/utils/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPostJournalEntry_UpdatesBalances(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	entry, err := env.svc.Ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("125.50"), day(2024, 6, 1)))
	require.NoError(t, err)

	assert.True(t, entry.Posted)
	assert.Regexp(t, regexp.MustCompile(`^JE-20240601-[0-9A-F]{8}$`), entry.EntryNumber)
	assert.True(t, entry.TotalDebit.Equal(dec("125.50")))
	assert.True(t, entry.TotalCredit.Equal(dec("125.50")))
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, 1, entry.Lines[0].LineNo)

	assert.True(t, env.balance(t, cash).Equal(dec("125.50")))
	assert.True(t, env.balance(t, revenue).Equal(dec("-125.50")))

	stored, err := env.svc.Ledger.GetJournalEntry(ctx, testCompany, entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, entry.EntryNumber, stored.EntryNumber)
	assert.Len(t, stored.Lines, 2)
	env.assertLedgerReconciles(t)
}

func TestPostJournalEntry_ToleranceBoundary(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := env.createAccount(t, "1010", domain.Asset)
	b := env.createAccount(t, "4000", domain.Revenue)

	req := simpleEntry(a, b, dec("1000.00"), day(2024, 6, 1))
	req.Lines[1].Credit = dec("999.99")
	_, err := env.svc.Ledger.PostJournalEntry(ctx, req)
	assert.ErrorIs(t, err, domain.ErrUnbalancedEntry)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req.Lines[1].Credit = dec("1000.005")
	_, err = env.svc.Ledger.PostJournalEntry(ctx, req)
	require.NoError(t, err)

	// Balances follow the lines, not the rounded totals.
	assert.True(t, env.balance(t, a).Equal(dec("1000")))
	assert.True(t, env.balance(t, b).Equal(dec("-1000.005")))
	env.assertLedgerReconciles(t)
}

func TestPostJournalEntry_InvalidLines(t *testing.T) {
	env := newTestEnv(t, nil)
	a := env.createAccount(t, "1010", domain.Asset)
	b := env.createAccount(t, "4000", domain.Revenue)

	tests := []struct {
		name  string
		lines []domain.LineInput
	}{
		{"single line", []domain.LineInput{{AccountID: a, Debit: dec("1")}}},
		{"both sides", []domain.LineInput{{AccountID: a, Debit: dec("1"), Credit: dec("1")}, {AccountID: b, Credit: dec("0")}}},
		{"negative debit", []domain.LineInput{{AccountID: a, Debit: dec("-5")}, {AccountID: b, Credit: dec("-5")}}},
		{"missing account", []domain.LineInput{{Debit: dec("5")}, {AccountID: b, Credit: dec("5")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := simpleEntry(a, b, dec("1"), day(2024, 6, 1))
			req.Lines = tt.lines
			_, err := env.svc.Ledger.PostJournalEntry(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidLine)
		})
	}
	assert.True(t, env.balance(t, a).IsZero())
}

func TestPostJournalEntry_UnknownAccountIsAtomic(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	req := domain.PostJournalRequest{
		CompanyID: testCompany,
		Date:      day(2024, 6, 2),
		ActorID:   alice,
		Lines: []domain.LineInput{
			{AccountID: cash, Debit: dec("100")},
			{AccountID: revenue, Credit: dec("60")},
			{AccountID: "does-not-exist", Credit: dec("40")},
		},
	}
	_, err := env.svc.Ledger.PostJournalEntry(ctx, req)

	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
	assert.True(t, env.balance(t, cash).IsZero())
	assert.True(t, env.balance(t, revenue).IsZero())
	list, err := env.svc.Ledger.ListJournalEntries(ctx, testCompany, dto.ListJournalEntriesParams{})
	require.NoError(t, err)
	assert.Empty(t, list.Entries)
}

func TestPostJournalEntry_OtherCompanyAccountIsUnknown(t *testing.T) {
	env := newTestEnv(t, nil)
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	req := simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1))
	req.CompanyID = otherCompany
	_, err := env.svc.Ledger.PostJournalEntry(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
}

func TestPostJournalEntry_StorageFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)
	dbErr := errors.New("serialization failure")
	env.store.FailOn("SaveJournalEntries", dbErr)

	_, err := env.svc.Ledger.PostJournalEntry(context.Background(), simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1)))

	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.ErrorIs(t, err, dbErr)
}

func TestPostJournalEntry_PeriodClosed(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	lock, err := env.svc.PeriodLock.LockPeriod(ctx, testCompany, day(2024, 1, 1), day(2024, 1, 31), alice)
	require.NoError(t, err)

	_, err = env.svc.Ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("10"), day(2024, 1, 31)))
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)
	assert.True(t, env.balance(t, cash).IsZero())

	_, err = env.svc.PeriodLock.UnlockPeriod(ctx, testCompany, lock.LockID, bob)
	require.NoError(t, err)
	_, err = env.svc.Ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("10"), day(2024, 1, 31)))
	assert.NoError(t, err, "posting succeeds after an explicit unlock")
}

func TestPostJournalEntry_LockCheckFailureBlocks(t *testing.T) {
	env := newTestEnv(t, nil)
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)
	env.store.FailOn("HasLockedPeriod", errors.New("timeout"))

	_, err := env.svc.Ledger.PostJournalEntry(context.Background(), simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1)))

	assert.ErrorIs(t, err, domain.ErrPeriodClosed)
}

func TestPostJournalEntry_ApprovalGate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	req := simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1))
	req.Source = &domain.SourceRef{Module: domain.ModuleJournalEntry, RecordID: "draft-7"}

	_, err := env.svc.Ledger.PostJournalEntry(ctx, req)
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)

	ar, err := env.svc.Approval.RequestApproval(ctx, testCompany, domain.ModuleJournalEntry, "draft-7", alice)
	require.NoError(t, err)
	_, err = env.svc.Ledger.PostJournalEntry(ctx, req)
	assert.ErrorIs(t, err, domain.ErrApprovalRequired, "pending is not approved")

	_, err = env.svc.Approval.Decide(ctx, testCompany, ar.RequestID, bob, true, "")
	require.NoError(t, err)
	entry, err := env.svc.Ledger.PostJournalEntry(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "draft-7", entry.Source.RecordID)
}

func TestPostJournalEntries_AllOrNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	good := simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1))
	bad := simpleEntry(cash, "ghost", dec("5"), day(2024, 6, 1))

	_, err := env.svc.Ledger.PostJournalEntries(ctx, []domain.PostJournalRequest{good, bad})
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
	assert.True(t, env.balance(t, cash).IsZero())

	entries, err := env.svc.Ledger.PostJournalEntries(ctx, []domain.PostJournalRequest{good, good})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].EntryID, entries[1].EntryID)
	assert.True(t, env.balance(t, cash).Equal(dec("20")))

	_, err = env.svc.Ledger.PostJournalEntries(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPostReversingEntry(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	original, err := env.svc.Ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("80"), day(2024, 6, 3)))
	require.NoError(t, err)

	reversal, err := env.svc.Ledger.PostReversingEntry(ctx, testCompany, original.EntryID, nil, bob)
	require.NoError(t, err)
	require.NotNil(t, reversal.ReversesEntryID)
	assert.Equal(t, original.EntryID, *reversal.ReversesEntryID)
	assert.Equal(t, original.EntryDate, reversal.EntryDate)
	assert.Contains(t, reversal.Description, original.EntryNumber)
	assert.True(t, reversal.Lines[0].Credit.Equal(dec("80")))

	assert.True(t, env.balance(t, cash).IsZero())
	assert.True(t, env.balance(t, revenue).IsZero())

	_, err = env.svc.Ledger.PostReversingEntry(ctx, testCompany, original.EntryID, nil, bob)
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)

	_, err = env.svc.Ledger.PostReversingEntry(ctx, testCompany, reversal.EntryID, nil, bob)
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)

	_, err = env.svc.Ledger.PostReversingEntry(ctx, testCompany, "missing", nil, bob)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	env.assertLedgerReconciles(t)
}

func TestPostReversingEntry_HonorsLockOnReversalDate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	original, err := env.svc.Ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("80"), day(2024, 1, 10)))
	require.NoError(t, err)
	_, err = env.svc.PeriodLock.LockPeriod(ctx, testCompany, day(2024, 1, 1), day(2024, 1, 31), alice)
	require.NoError(t, err)

	_, err = env.svc.Ledger.PostReversingEntry(ctx, testCompany, original.EntryID, nil, bob)
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	feb := day(2024, 2, 1)
	reversal, err := env.svc.Ledger.PostReversingEntry(ctx, testCompany, original.EntryID, &feb, bob)
	require.NoError(t, err)
	assert.Equal(t, feb, reversal.EntryDate)
}

func TestPostJournalEntry_ConcurrentPostingsReconcile(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	bank := env.createAccount(t, "1020", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		debit := cash
		if i%2 == 1 {
			debit = bank
		}
		g.Go(func() error {
			_, err := env.svc.Ledger.PostJournalEntry(ctx, simpleEntry(debit, revenue, dec("1.10"), day(2024, 6, 1)))
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.True(t, env.balance(t, cash).Equal(dec("27.50")))
	assert.True(t, env.balance(t, bank).Equal(dec("27.50")))
	assert.True(t, env.balance(t, revenue).Equal(dec("-55")))
	env.assertLedgerReconciles(t)
}

func TestListJournalEntries_Pagination(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	for i := 1; i <= 5; i++ {
		_, err := env.svc.Ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("1"), day(2024, 6, i)))
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	var token *string
	pages := 0
	for {
		page, err := env.svc.Ledger.ListJournalEntries(ctx, testCompany, dto.ListJournalEntriesParams{Limit: 2, NextToken: token})
		require.NoError(t, err)
		pages++
		for _, e := range page.Entries {
			assert.False(t, seen[e.EntryID], "entry repeated across pages")
			seen[e.EntryID] = true
		}
		if page.NextToken == nil {
			break
		}
		token = page.NextToken
	}
	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 5)

	bad := "not-a-token"
	_, err := env.svc.Ledger.ListJournalEntries(ctx, testCompany, dto.ListJournalEntriesParams{NextToken: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPostJournalEntry_ApprovalAuthorizesOneEntry(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	equity := env.createAccount(t, "3000", domain.Equity)

	ar, err := env.svc.Approval.RequestApproval(ctx, testCompany, domain.ModuleJournalEntry, "je-draft-1", alice)
	require.NoError(t, err)
	_, err = env.svc.Approval.Decide(ctx, testCompany, ar.RequestID, bob, true, "")
	require.NoError(t, err)

	req := simpleEntry(cash, equity, dec("1000"), day(2024, 6, 1))
	req.Source = &domain.SourceRef{Module: domain.ModuleJournalEntry, RecordID: "je-draft-1"}
	first, err := env.svc.Ledger.PostJournalEntry(ctx, req)
	require.NoError(t, err)

	for _, amount := range []string{"1000", "1000000"} {
		again := simpleEntry(cash, equity, dec(amount), day(2024, 6, 2))
		again.Source = &domain.SourceRef{Module: domain.ModuleJournalEntry, RecordID: "je-draft-1"}
		_, err = env.svc.Ledger.PostJournalEntry(ctx, again)
		assert.ErrorIs(t, err, domain.ErrDuplicatePosting, amount)
	}
	assert.True(t, env.balance(t, cash).Equal(dec("1000")))

	// Reversals carry the same source and are still allowed
	_, err = env.svc.Ledger.PostReversingEntry(ctx, testCompany, first.EntryID, nil, bob)
	require.NoError(t, err)
	assert.True(t, env.balance(t, cash).IsZero())
	env.assertLedgerReconciles(t)
}

func TestPostJournalEntries_DuplicateSourceInOneBatch(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	req := simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1))
	req.Source = &domain.SourceRef{Module: domain.ModuleSalesInvoice, RecordID: "inv-1", Role: domain.RoleRevenue}

	_, err := env.svc.Ledger.PostJournalEntries(ctx, []domain.PostJournalRequest{req, req})

	assert.ErrorIs(t, err, domain.ErrDuplicatePosting)
	assert.True(t, env.balance(t, cash).IsZero(), "nothing from the batch is kept")
}

func TestPostJournalEntry_WithoutDocumentIsNotKeyed(t *testing.T) {
	cfg := testConfig()
	cfg.ApprovalPolicy = domain.ApprovalPolicy{}
	env := newTestEnv(t, cfg)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	for i := 0; i < 2; i++ {
		req := simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1))
		req.Source = &domain.SourceRef{Module: domain.ModuleJournalEntry}
		_, err := env.svc.Ledger.PostJournalEntry(ctx, req)
		require.NoError(t, err)
	}
	assert.True(t, env.balance(t, cash).Equal(dec("20")))
}

func TestPostJournalEntry_RejectsSubScaleAmounts(t *testing.T) {
	env := newTestEnv(t, nil)
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)

	req := simpleEntry(cash, revenue, dec("0.0001"), day(2024, 6, 1))
	req.Lines = []domain.LineInput{
		{AccountID: cash, Debit: dec("0.00005")},
		{AccountID: cash, Debit: dec("0.00005")},
		{AccountID: revenue, Credit: dec("0.0001")},
	}
	_, err := env.svc.Ledger.PostJournalEntry(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrInvalidLine)
	assert.True(t, env.balance(t, cash).IsZero())
}

// openGuard never reports a closed period, standing in for a check that ran before a lock landed.
type openGuard struct{}

func (openGuard) IsDateLocked(context.Context, string, time.Time) bool { return false }

func TestPostJournalEntry_StorageRechecksClosedPeriod(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	cash := env.createAccount(t, "1010", domain.Asset)
	revenue := env.createAccount(t, "4000", domain.Revenue)
	_, err := env.svc.PeriodLock.LockPeriod(ctx, testCompany, day(2024, 5, 1), day(2024, 5, 31), alice)
	require.NoError(t, err)

	ledger := services.NewLedgerService(env.store, openGuard{}, nil, accounting.DefaultTolerance,
		services.WithClock(func() time.Time { return testNow }))
	_, err = ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("10"), day(2024, 5, 20)))

	assert.ErrorIs(t, err, domain.ErrPeriodClosed)
	assert.NotErrorIs(t, err, domain.ErrStorageFailure)
	assert.True(t, env.balance(t, cash).IsZero())

	_, err = ledger.PostJournalEntry(ctx, simpleEntry(cash, revenue, dec("10"), day(2024, 6, 1)))
	assert.NoError(t, err)
}
