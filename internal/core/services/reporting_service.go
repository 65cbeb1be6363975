package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/utils/accounting"
	"golang.org/x/sync/errgroup"
)

// DefaultLiquidAccountPrefixes select the Cash (1010) and Bank (1020) accounts.
var DefaultLiquidAccountPrefixes = []string{"101", "102"}

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	accountRepo    portsrepo.AccountReader
	reportingRepo  portsrepo.ReportingRepository
	liquidPrefixes []string
}

// NewReportingService creates a new reporting service. Accounts whose code starts with one of
// liquidPrefixes make up the cash flow report.
func NewReportingService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingRepository, liquidPrefixes []string, opts ...Option) portssvc.ReportingService {
	if len(liquidPrefixes) == 0 {
		liquidPrefixes = DefaultLiquidAccountPrefixes
	}
	return &reportingService{
		BaseService:    newBaseService(opts),
		accountRepo:    accountRepo,
		reportingRepo:  reportingRepo,
		liquidPrefixes: liquidPrefixes,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance reads the running balances. Zero-balance accounts are omitted.
func (s *reportingService) TrialBalance(ctx context.Context, companyID string) (*domain.TrialBalanceReport, error) {
	accounts, err := s.listAccounts(ctx, companyID)
	if err != nil {
		return nil, err
	}

	report := &domain.TrialBalanceReport{Rows: []domain.TrialBalanceRow{}}
	for _, acc := range accounts {
		if acc.Balance.IsZero() {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
		}
		if acc.Balance.IsPositive() {
			row.Debit = acc.Balance
		} else {
			row.Credit = acc.Balance.Neg()
		}
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Rows = append(report.Rows, row)
	}

	if !report.TotalDebit.Equal(report.TotalCredit) {
		s.LogWarn(ctx, "Trial balance totals differ",
			slog.String("company_id", companyID),
			slog.String("debit", report.TotalDebit.String()),
			slog.String("credit", report.TotalCredit.String()))
	}
	return report, nil
}

func (s *reportingService) IncomeStatement(ctx context.Context, companyID string, from, to *time.Time) (*domain.IncomeStatement, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	var accounts []domain.Account
	var activity []domain.AccountActivity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.listAccounts(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		activity, err = s.sumLines(gctx, companyID, domain.ActivityFilter{From: from, To: to})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := incomeFrom(indexAccounts(accounts), activity)
	report.From, report.To = from, to
	return report, nil
}

// BalanceSheet folds revenue and expense into two synthetic equity figures: Current Year
// Earnings for the calendar year containing asOf and Retained Earnings before it.
func (s *reportingService) BalanceSheet(ctx context.Context, companyID string, asOf *time.Time) (*domain.BalanceSheetReport, error) {
	date := domain.DateOnly(s.Now())
	if asOf != nil {
		date = domain.DateOnly(*asOf)
	}
	yearStart := time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	var accounts []domain.Account
	var toDate, yearToDate []domain.AccountActivity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.listAccounts(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		toDate, err = s.sumLines(gctx, companyID, domain.ActivityFilter{To: &date})
		return err
	})
	g.Go(func() error {
		var err error
		yearToDate, err = s.sumLines(gctx, companyID, domain.ActivityFilter{From: &yearStart, To: &date})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := indexAccounts(accounts)
	report := &domain.BalanceSheetReport{
		AsOf:        date,
		Assets:      []domain.AccountAmount{},
		Liabilities: []domain.AccountAmount{},
		Equity:      []domain.AccountAmount{},
	}
	for _, a := range toDate {
		acc, ok := byID[a.AccountID]
		if !ok {
			continue
		}
		amount, err := accounting.NormalizedAmount(acc.AccountType, a.Net())
		if err != nil {
			s.LogError(ctx, err, "Skipping account with unknown type", slog.String("account_id", acc.AccountID))
			continue
		}
		line := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, NetAmount: amount}
		switch acc.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, line)
			report.TotalAssets = report.TotalAssets.Add(amount)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, line)
			report.TotalLiabilities = report.TotalLiabilities.Add(amount)
		case domain.Equity:
			report.Equity = append(report.Equity, line)
			report.TotalEquity = report.TotalEquity.Add(amount)
		}
	}

	allTime := incomeFrom(byID, toDate).NetIncome
	report.CurrentYearEarnings = incomeFrom(byID, yearToDate).NetIncome
	report.RetainedEarnings = allTime.Sub(report.CurrentYearEarnings)
	report.TotalEquity = report.TotalEquity.Add(allTime)

	sortAmounts(report.Assets)
	sortAmounts(report.Liabilities)
	sortAmounts(report.Equity)
	return report, nil
}

func (s *reportingService) CashFlow(ctx context.Context, companyID string, from, to *time.Time) (*domain.CashFlowReport, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	var accounts []domain.Account
	var activity []domain.AccountActivity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.listAccounts(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		activity, err = s.sumLines(gctx, companyID, domain.ActivityFilter{From: from, To: to})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := indexAccounts(accounts)
	report := &domain.CashFlowReport{From: from, To: to, Rows: []domain.CashFlowRow{}}
	for _, a := range activity {
		acc, ok := byID[a.AccountID]
		if !ok || !s.isLiquid(acc.Code) {
			continue
		}
		report.Rows = append(report.Rows, domain.CashFlowRow{
			AccountID: acc.AccountID,
			Code:      acc.Code,
			Name:      acc.Name,
			Inflow:    a.Debit,
			Outflow:   a.Credit,
		})
		report.TotalInflow = report.TotalInflow.Add(a.Debit)
		report.TotalOutflow = report.TotalOutflow.Add(a.Credit)
	}
	report.NetCashFlow = report.TotalInflow.Sub(report.TotalOutflow)
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Code < report.Rows[j].Code })
	return report, nil
}

func (s *reportingService) isLiquid(code string) bool {
	for _, p := range s.liquidPrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func (s *reportingService) listAccounts(ctx context.Context, companyID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for report", slog.String("company_id", companyID))
		return nil, domain.StorageFailure("list accounts", err)
	}
	return accounts, nil
}

func (s *reportingService) sumLines(ctx context.Context, companyID string, filter domain.ActivityFilter) ([]domain.AccountActivity, error) {
	activity, err := s.reportingRepo.SumLinesByAccount(ctx, companyID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate journal lines", slog.String("company_id", companyID))
		return nil, domain.StorageFailure("sum journal lines", err)
	}
	return activity, nil
}

// incomeFrom builds revenue and expense sections. Revenue reads credit minus debit,
// expense debit minus credit.
func incomeFrom(byID map[string]domain.Account, activity []domain.AccountActivity) *domain.IncomeStatement {
	report := &domain.IncomeStatement{Revenue: []domain.AccountAmount{}, Expenses: []domain.AccountAmount{}}
	for _, a := range activity {
		acc, ok := byID[a.AccountID]
		if !ok {
			continue
		}
		switch acc.AccountType {
		case domain.Revenue:
			amount := a.Credit.Sub(a.Debit)
			report.Revenue = append(report.Revenue, domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, NetAmount: amount})
			report.TotalRevenue = report.TotalRevenue.Add(amount)
		case domain.Expense:
			amount := a.Debit.Sub(a.Credit)
			report.Expenses = append(report.Expenses, domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, NetAmount: amount})
			report.TotalExpense = report.TotalExpense.Add(amount)
		}
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpense)
	sortAmounts(report.Revenue)
	sortAmounts(report.Expenses)
	return report
}

func indexAccounts(accounts []domain.Account) map[string]domain.Account {
	byID := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.AccountID] = acc
	}
	return byID
}

func sortAmounts(amounts []domain.AccountAmount) {
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].Code < amounts[j].Code })
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return fmt.Errorf("%w: range end is before range start", apperrors.ErrValidation)
	}
	return nil
}
