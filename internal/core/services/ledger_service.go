package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/SscSPs/erp_ledger_engine/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultJournalPageSize = 50

// ledgerService validates and commits journal entries.
type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	guard       portssvc.PeriodGuard
	approvals   portssvc.ApprovalChecker
	tolerance   decimal.Decimal
}

// NewLedgerService creates the ledger poster. tolerance bounds the accepted difference
// between total debits and total credits of an entry.
func NewLedgerService(journalRepo portsrepo.JournalRepositoryFacade, guard portssvc.PeriodGuard, approvals portssvc.ApprovalChecker, tolerance decimal.Decimal, opts ...Option) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: newBaseService(opts),
		journalRepo: journalRepo,
		guard:       guard,
		approvals:   approvals,
		tolerance:   tolerance,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) PostJournalEntry(ctx context.Context, req domain.PostJournalRequest) (*domain.JournalEntry, error) {
	entries, err := s.PostJournalEntries(ctx, []domain.PostJournalRequest{req})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func (s *ledgerService) PostJournalEntries(ctx context.Context, reqs []domain.PostJournalRequest) ([]domain.JournalEntry, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: nothing to post", apperrors.ErrValidation)
	}

	now := s.Now()
	entries := make([]domain.JournalEntry, 0, len(reqs))
	for i := range reqs {
		entry, err := s.prepareEntry(ctx, reqs[i], now)
		if err != nil {
			s.LogWarn(ctx, "Journal entry rejected",
				slog.String("company_id", reqs[i].CompanyID),
				slog.Int("request_index", i),
				slog.String("error", err.Error()))
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := s.commit(ctx, entries, reqs[0].ActorID, now); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *ledgerService) PostReversingEntry(ctx context.Context, companyID, entryID string, date *time.Time, actorID string) (*domain.JournalEntry, error) {
	original, err := s.GetJournalEntry(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if original.ReversesEntryID != nil {
		return nil, fmt.Errorf("%w: %s is itself a reversal", domain.ErrAlreadyReversed, original.EntryNumber)
	}
	if _, err := s.journalRepo.FindReversalOf(ctx, companyID, entryID); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, original.EntryNumber)
	} else if !isNotFound(err) {
		s.LogError(ctx, err, "Failed to look up reversal", slog.String("entry_id", entryID))
		return nil, domain.StorageFailure("find reversal", err)
	}

	reversalDate := original.EntryDate
	if date != nil {
		reversalDate = *date
	}
	lines := make([]domain.LineInput, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = domain.LineInput{
			AccountID:   l.AccountID,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
		}
	}

	// The reversal inherits the source so it passes the same approval as the original.
	req := domain.PostJournalRequest{
		CompanyID:   companyID,
		Date:        reversalDate,
		Description: fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description),
		Reference:   original.EntryNumber,
		Lines:       lines,
		ActorID:     actorID,
		Source:      original.Source,
	}

	now := s.Now()
	entry, err := s.prepareEntry(ctx, req, now)
	if err != nil {
		s.LogWarn(ctx, "Reversal rejected", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}
	entry.ReversesEntryID = &original.EntryID

	if err := s.commit(ctx, []domain.JournalEntry{*entry}, actorID, now); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) GetJournalEntry(ctx context.Context, companyID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalEntryByID(ctx, companyID, entryID)
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		return nil, domain.StorageFailure("find journal entry", err)
	}
	return entry, nil
}

func (s *ledgerService) ListJournalEntries(ctx context.Context, companyID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultJournalPageSize
	}
	entries, nextToken, err := s.journalRepo.ListJournalEntries(ctx, companyID, limit, params.NextToken)
	if err != nil {
		if isValidation(err) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("company_id", companyID))
		return nil, domain.StorageFailure("list journal entries", err)
	}
	return &dto.ListJournalEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// prepareEntry runs every check that does not need the transaction and builds the entry.
// Checks run in a fixed order: shape, balance, period, approval.
func (s *ledgerService) prepareEntry(ctx context.Context, req domain.PostJournalRequest, now time.Time) (*domain.JournalEntry, error) {
	if req.CompanyID == "" || req.ActorID == "" {
		return nil, fmt.Errorf("%w: company and actor are required", apperrors.ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if err := accounting.ValidateLines(req.Lines); err != nil {
		return nil, err
	}

	totalDebit, totalCredit := accounting.SumLines(req.Lines)
	if !accounting.IsBalanced(totalDebit, totalCredit, s.tolerance) {
		return nil, fmt.Errorf("%w: debits %s, credits %s", domain.ErrUnbalancedEntry, totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}

	entryDate := domain.DateOnly(req.Date)
	if s.guard.IsDateLocked(ctx, req.CompanyID, entryDate) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPeriodClosed, entryDate.Format(time.DateOnly))
	}

	if req.Source != nil && s.approvals != nil && s.approvals.IsApprovalRequired(req.CompanyID, req.Source.Module, req.Source.Amount) {
		approved, err := s.approvals.IsApproved(ctx, req.CompanyID, req.Source.Module, req.Source.RecordID)
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrApprovalRequired, req.Source.Module, req.Source.RecordID)
		}
	}

	entryID := uuid.NewString()
	entry := &domain.JournalEntry{
		EntryID:     entryID,
		CompanyID:   req.CompanyID,
		EntryNumber: entryNumber(entryDate, entryID),
		EntryDate:   entryDate,
		Description: req.Description,
		Reference:   req.Reference,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Posted:      true,
		Source:      req.Source,
		Lines:       make([]domain.JournalLine, len(req.Lines)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     req.ActorID,
			LastUpdatedAt: now,
			LastUpdatedBy: req.ActorID,
		},
	}
	for i, l := range req.Lines {
		entry.Lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return entry, nil
}

func (s *ledgerService) commit(ctx context.Context, entries []domain.JournalEntry, actorID string, now time.Time) error {
	balanceChanges := make(map[string]decimal.Decimal)
	for _, e := range entries {
		for accountID, delta := range accounting.BalanceChanges(e.Lines) {
			balanceChanges[accountID] = balanceChanges[accountID].Add(delta)
		}
	}

	if err := s.journalRepo.SaveJournalEntries(ctx, entries, balanceChanges, actorID, now); err != nil {
		if isRejection(err) {
			s.LogWarn(ctx, "Journal entries rejected by storage", slog.Int("entries", len(entries)), slog.String("error", err.Error()))
			return err
		}
		s.LogError(ctx, err, "Failed to save journal entries", slog.Int("entries", len(entries)))
		return domain.StorageFailure("save journal entries", err)
	}

	for _, e := range entries {
		s.LogInfo(ctx, "Journal entry posted",
			slog.String("entry_id", e.EntryID),
			slog.String("entry_number", e.EntryNumber),
			slog.String("total", e.TotalDebit.String()))
	}
	return nil
}

// entryNumber is for display only; uniqueness comes from the entry id.
func entryNumber(date time.Time, entryID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(entryID, "-", ""))[:8]
	return fmt.Sprintf("JE-%s-%s", date.Format("20060102"), suffix)
}
