package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/SscSPs/erp_ledger_engine/internal/core/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/SscSPs/erp_ledger_engine/internal/handlers"
	"github.com/SscSPs/erp_ledger_engine/internal/middleware"
	"github.com/SscSPs/erp_ledger_engine/internal/platform/config"
	"github.com/SscSPs/erp_ledger_engine/internal/repositories/database/memory"
	"github.com/SscSPs/erp_ledger_engine/internal/utils/accounting"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPIClient(t *testing.T) (*apiClient, *memory.Store) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		IsProduction:            true,
		BalanceTolerance:        accounting.DefaultTolerance,
		ApprovalPolicy:          domain.DefaultApprovalPolicy(),
		ApprovalAllowDuplicates: true,
	}
	store := memory.New()
	r := gin.New()
	handlers.RegisterRoutes(r, cfg, services.NewServiceContainer(cfg, memory.NewRepositoryProvider(store)), nil)
	return &apiClient{t: t, router: r}, store
}

func (a *apiClient) call(method, path, actor string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1/companies/acme"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, actor)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestManualEntryLifecycle(t *testing.T) {
	api, _ := newAPIClient(t)

	var cash, equity dto.AccountResponse
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/accounts", "alice",
		dto.CreateAccountRequest{Code: "1010", Name: "Cash", AccountType: domain.Asset}, &cash))
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/accounts", "alice",
		dto.CreateAccountRequest{Code: "3000", Name: "Capital", AccountType: domain.Equity}, &equity))

	entry := map[string]any{
		"date":             "2024-03-05T00:00:00Z",
		"description":      "Owner contribution",
		"approvalRecordID": "je-req-1",
		"lines": []map[string]any{
			{"accountID": cash.AccountID, "debit": "1000"},
			{"accountID": equity.AccountID, "credit": "1000"},
		},
	}

	// Manual entries need an approved request first
	assert.Equal(t, http.StatusForbidden, api.call(http.MethodPost, "/journal-entries", "alice", entry, nil))

	var approval domain.ApprovalRequest
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/approvals", "alice",
		dto.CreateApprovalRequest{Module: domain.ModuleJournalEntry, RecordID: "je-req-1"}, &approval))
	approve := true
	assert.Equal(t, http.StatusForbidden, api.call(http.MethodPost, "/approvals/"+approval.RequestID+"/decision", "alice",
		dto.DecideApprovalRequest{Approve: &approve}, nil), "requester cannot approve")
	require.Equal(t, http.StatusOK, api.call(http.MethodPost, "/approvals/"+approval.RequestID+"/decision", "bob",
		dto.DecideApprovalRequest{Approve: &approve}, nil))

	var posted dto.JournalEntryResponse
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/journal-entries", "alice", entry, &posted))
	assert.True(t, posted.TotalDebit.Equal(decimal.NewFromInt(1000)))

	var tb domain.TrialBalanceReport
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/reports/trial-balance", "alice", nil, &tb))
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
	assert.Len(t, tb.Rows, 2)

	// The approval covers one entry only
	entry["description"] = "Second contribution"
	assert.Equal(t, http.StatusConflict, api.call(http.MethodPost, "/journal-entries", "alice", entry, nil))
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/reports/trial-balance", "alice", nil, &tb))
	assert.True(t, tb.TotalDebit.Equal(decimal.NewFromInt(1000)))

	// Close March and try again
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/period-locks", "alice",
		map[string]string{"periodStart": "2024-03-01T00:00:00Z", "periodEnd": "2024-03-31T00:00:00Z"}, nil))
	assert.Equal(t, http.StatusConflict, api.call(http.MethodPost, "/journal-entries", "alice", entry, nil))

	var check dto.DateLockedResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/period-locks/check?date=2024-03-15", "alice", nil, &check))
	assert.True(t, check.Locked)

	// Reversal dated in an open period is fine, a second one is not
	reversal := map[string]string{"date": "2024-04-01T00:00:00Z"}
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/journal-entries/"+posted.EntryID+"/reverse", "alice", reversal, nil))
	assert.Equal(t, http.StatusConflict, api.call(http.MethodPost, "/journal-entries/"+posted.EntryID+"/reverse", "alice", reversal, nil))
}

func TestUnbalancedEntryIsBadRequest(t *testing.T) {
	api, _ := newAPIClient(t)
	var cash, sales dto.AccountResponse
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/accounts", "alice",
		dto.CreateAccountRequest{Code: "1010", Name: "Cash", AccountType: domain.Asset}, &cash))
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/accounts", "alice",
		dto.CreateAccountRequest{Code: "4000", Name: "Sales", AccountType: domain.Revenue}, &sales))

	code := api.call(http.MethodPost, "/journal-entries", "alice", map[string]any{
		"date":             "2024-03-05T00:00:00Z",
		"description":      "Broken",
		"approvalRecordID": "x",
		"lines": []map[string]any{
			{"accountID": cash.AccountID, "debit": "100"},
			{"accountID": sales.AccountID, "credit": "90"},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAutoPostSalesInvoiceEndpoint(t *testing.T) {
	api, store := newAPIClient(t)
	store.PutSalesInvoice(domain.SalesInvoice{
		InvoiceID:     "inv-9",
		CompanyID:     "acme",
		InvoiceNumber: "INV-9",
		InvoiceDate:   time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
		Total:         decimal.NewFromInt(500),
	})

	var resp dto.AutoPostResponse
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/postings/sales-invoices", "alice",
		dto.PostSourceDocumentRequest{DocumentID: "inv-9"}, &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "INV-9", resp.Entries[0].Reference)

	var income domain.IncomeStatement
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/reports/income-statement?from=2024-01-01&to=2024-12-31", "alice", nil, &income))
	assert.True(t, income.TotalRevenue.Equal(decimal.NewFromInt(500)))

	assert.Equal(t, http.StatusNotFound, api.call(http.MethodPost, "/postings/customer-payments", "alice",
		dto.PostSourceDocumentRequest{DocumentID: "nope"}, nil))
	assert.Equal(t, http.StatusBadRequest, api.call(http.MethodGet, "/reports/cash-flow?from=2024-12-31&to=2024-01-01", "alice", nil, nil))
}
