package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/core/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/SscSPs/erp_ledger_engine/internal/platform/config"
	"github.com/SscSPs/erp_ledger_engine/internal/repositories/database/memory"
	"github.com/SscSPs/erp_ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testCompany  = "company-1"
	otherCompany = "company-2"
	alice        = "alice"
	bob          = "bob"
)

var testNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		BalanceTolerance:        accounting.DefaultTolerance,
		ApprovalPolicy:          domain.DefaultApprovalPolicy(),
		ApprovalAllowDuplicates: true,
		LiquidAccountPrefixes:   services.DefaultLiquidAccountPrefixes,
	}
}

type testEnv struct {
	store *memory.Store
	svc   *portssvc.ServiceContainer
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	store := memory.New()
	svc := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(store), services.WithClock(func() time.Time { return testNow }))
	return &testEnv{store: store, svc: svc}
}

func (e *testEnv) createAccount(t *testing.T, code string, accountType domain.AccountType) string {
	t.Helper()
	acc, err := e.svc.Account.CreateAccount(context.Background(), testCompany, dto.CreateAccountRequest{
		Code:        code,
		Name:        "Account " + code,
		AccountType: accountType,
	}, alice)
	require.NoError(t, err)
	return acc.AccountID
}

func (e *testEnv) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := e.svc.Account.GetAccount(context.Background(), testCompany, accountID)
	require.NoError(t, err)
	return acc.Balance
}

func (e *testEnv) balanceByCode(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	accounts, err := e.svc.Account.ListAccounts(context.Background(), testCompany)
	require.NoError(t, err)
	for _, acc := range accounts {
		if acc.Code == code {
			return acc.Balance
		}
	}
	t.Fatalf("account %s not found", code)
	return decimal.Zero
}

// assertLedgerReconciles checks that every account balance equals the net of its lines
// and that every entry's lines balance.
func (e *testEnv) assertLedgerReconciles(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	accounts, err := e.svc.Account.ListAccounts(ctx, testCompany)
	require.NoError(t, err)

	activity, err := memory.NewRepositoryProvider(e.store).ReportingRepo.SumLinesByAccount(ctx, testCompany, domain.ActivityFilter{})
	require.NoError(t, err)
	net := make(map[string]decimal.Decimal)
	for _, a := range activity {
		net[a.AccountID] = a.Net()
	}
	for _, acc := range accounts {
		require.Truef(t, acc.Balance.Equal(net[acc.AccountID]), "account %s balance %s, lines %s", acc.Code, acc.Balance, net[acc.AccountID])
	}
}

func simpleEntry(debitID, creditID string, amount decimal.Decimal, date time.Time) domain.PostJournalRequest {
	return domain.PostJournalRequest{
		CompanyID:   testCompany,
		Date:        date,
		Description: "test entry",
		Lines: []domain.LineInput{
			{AccountID: debitID, Debit: amount},
			{AccountID: creditID, Credit: amount},
		},
		ActorID: alice,
	}
}
