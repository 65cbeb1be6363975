package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestPostSalesInvoice_EndToEnd(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutSalesInvoice(domain.SalesInvoice{
		InvoiceID:     "inv-1",
		CompanyID:     testCompany,
		InvoiceNumber: "INV-0001",
		InvoiceDate:   day(2024, 6, 10),
		Total:         dec("500"),
		Lines:         []domain.SalesInvoiceLine{{Description: "Consulting", Quantity: dec("5"), UnitPrice: dec("100")}},
	})

	entries, err := env.svc.AutoPost.PostSalesInvoice(ctx, testCompany, "inv-1", alice)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no cost information, no COGS entry")
	assert.Equal(t, "INV-0001", entries[0].Reference)
	assert.Equal(t, domain.ModuleSalesInvoice, entries[0].Source.Module)

	assert.True(t, env.balanceByCode(t, "1100").Equal(dec("500")))
	assert.True(t, env.balanceByCode(t, "4000").Equal(dec("-500")))

	income, err := env.svc.Reporting.IncomeStatement(ctx, testCompany, nil, nil)
	require.NoError(t, err)
	assert.True(t, income.TotalRevenue.Equal(dec("500")))
	assert.True(t, income.NetIncome.Equal(dec("500")))
	env.assertLedgerReconciles(t)
}

func TestPostSalesInvoice_WithCostOfGoods(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutSalesInvoice(domain.SalesInvoice{
		InvoiceID:     "inv-2",
		CompanyID:     testCompany,
		InvoiceNumber: "INV-0002",
		InvoiceDate:   day(2024, 6, 11),
		Total:         dec("300"),
		Lines: []domain.SalesInvoiceLine{
			{Description: "Widget", Quantity: dec("3"), UnitPrice: dec("80"), UnitCost: ptr(dec("50"))},
			{Description: "Setup", Quantity: dec("1"), UnitPrice: dec("60")},
		},
	})

	entries, err := env.svc.AutoPost.PostSalesInvoice(ctx, testCompany, "inv-2", alice)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, env.balanceByCode(t, "5000").Equal(dec("150")))
	assert.True(t, env.balanceByCode(t, "1200").Equal(dec("-150")))
	assert.True(t, env.balanceByCode(t, "1100").Equal(dec("300")))
	env.assertLedgerReconciles(t)
}

func TestPostSalesInvoice_ClosedPeriodLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutSalesInvoice(domain.SalesInvoice{
		InvoiceID:     "inv-3",
		CompanyID:     testCompany,
		InvoiceNumber: "INV-0003",
		InvoiceDate:   day(2024, 1, 20),
		Total:         dec("200"),
		Lines:         []domain.SalesInvoiceLine{{Quantity: dec("1"), UnitPrice: dec("200"), UnitCost: ptr(dec("120"))}},
	})
	_, err := env.svc.PeriodLock.LockPeriod(ctx, testCompany, day(2024, 1, 1), day(2024, 1, 31), alice)
	require.NoError(t, err)

	_, err = env.svc.AutoPost.PostSalesInvoice(ctx, testCompany, "inv-3", alice)
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	accounts, err := env.svc.Account.ListAccounts(ctx, testCompany)
	require.NoError(t, err)
	for _, acc := range accounts {
		assert.Truef(t, acc.Balance.IsZero(), "account %s moved", acc.Code)
	}
	list, err := env.svc.Ledger.ListJournalEntries(ctx, testCompany, dto.ListJournalEntriesParams{})
	require.NoError(t, err)
	assert.Empty(t, list.Entries)
}

func TestPostSalesInvoice_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutSalesInvoice(domain.SalesInvoice{InvoiceID: "zero", CompanyID: testCompany, InvoiceNumber: "INV-0", InvoiceDate: day(2024, 6, 1)})

	_, err := env.svc.AutoPost.PostSalesInvoice(ctx, testCompany, "zero", alice)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.svc.AutoPost.PostSalesInvoice(ctx, testCompany, "missing", alice)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.svc.AutoPost.PostSalesInvoice(ctx, otherCompany, "zero", alice)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostGoodsReceipt(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutGoodsReceipt(domain.GoodsReceipt{
		ReceiptID:       "gr-1",
		CompanyID:       testCompany,
		PurchaseOrderID: "po-1",
		PONumber:        "PO-0001",
		ReceivedDate:    day(2024, 6, 5),
		Total:           dec("1250"),
	})

	entry, err := env.svc.AutoPost.PostGoodsReceipt(ctx, testCompany, "gr-1", alice)
	require.NoError(t, err)
	assert.Equal(t, "PO-0001", entry.Reference)
	assert.True(t, env.balanceByCode(t, "1200").Equal(dec("1250")))
	assert.True(t, env.balanceByCode(t, "2100").Equal(dec("-1250")))
}

func TestPostGoodsReceipt_LargeOrderNeedsApprovedPO(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutGoodsReceipt(domain.GoodsReceipt{
		ReceiptID:       "gr-2",
		CompanyID:       testCompany,
		PurchaseOrderID: "po-2",
		PONumber:        "PO-0002",
		ReceivedDate:    day(2024, 6, 5),
		Total:           dec("75000"),
	})

	_, err := env.svc.AutoPost.PostGoodsReceipt(ctx, testCompany, "gr-2", alice)
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)

	req, err := env.svc.Approval.RequestApproval(ctx, testCompany, domain.ModulePurchaseOrder, "po-2", alice)
	require.NoError(t, err)
	_, err = env.svc.Approval.Decide(ctx, testCompany, req.RequestID, bob, true, "")
	require.NoError(t, err)

	_, err = env.svc.AutoPost.PostGoodsReceipt(ctx, testCompany, "gr-2", alice)
	assert.NoError(t, err)
}

func TestPostPayments(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutPayment(domain.Payment{
		PaymentID: "p-in", CompanyID: testCompany, PaymentNumber: "RCPT-1",
		PaymentDate: day(2024, 6, 12), Direction: domain.PaymentFromCustomer, Method: domain.PaymentBank, Amount: dec("400"),
	})
	env.store.PutPayment(domain.Payment{
		PaymentID: "p-out", CompanyID: testCompany, PaymentNumber: "DISB-1",
		PaymentDate: day(2024, 6, 13), Direction: domain.PaymentToSupplier, Method: domain.PaymentCash, Amount: dec("150"),
	})

	in, err := env.svc.AutoPost.PostCustomerPayment(ctx, testCompany, "p-in", alice)
	require.NoError(t, err)
	assert.Equal(t, "RCPT-1", in.Reference)
	assert.True(t, env.balanceByCode(t, "1020").Equal(dec("400")))
	assert.True(t, env.balanceByCode(t, "1100").Equal(dec("-400")))

	_, err = env.svc.AutoPost.PostSupplierPayment(ctx, testCompany, "p-out", alice)
	require.NoError(t, err)
	assert.True(t, env.balanceByCode(t, "2100").Equal(dec("150")))
	assert.True(t, env.balanceByCode(t, "1010").Equal(dec("-150")))

	_, err = env.svc.AutoPost.PostSupplierPayment(ctx, testCompany, "p-in", alice)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "direction must match the adapter")
	env.assertLedgerReconciles(t)
}

func TestPostCustomerPayment_AboveThresholdNeedsApproval(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutPayment(domain.Payment{
		PaymentID: "p-big", CompanyID: testCompany, PaymentNumber: "RCPT-9",
		PaymentDate: day(2024, 6, 12), Direction: domain.PaymentFromCustomer, Method: domain.PaymentBank, Amount: dec("25000"),
	})

	_, err := env.svc.AutoPost.PostCustomerPayment(ctx, testCompany, "p-big", alice)
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)
	assert.True(t, env.balanceByCode(t, "1020").IsZero(), "standard accounts may exist but nothing is posted")

	req, err := env.svc.Approval.RequestApproval(ctx, testCompany, domain.ModulePayment, "p-big", alice)
	require.NoError(t, err)
	_, err = env.svc.Approval.Decide(ctx, testCompany, req.RequestID, bob, true, "")
	require.NoError(t, err)

	_, err = env.svc.AutoPost.PostCustomerPayment(ctx, testCompany, "p-big", alice)
	require.NoError(t, err)
	assert.True(t, env.balanceByCode(t, "1020").Equal(dec("25000")))
}

func TestPostCustomerPayment_PostsOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutPayment(domain.Payment{
		PaymentID: "pay-1", CompanyID: testCompany, PaymentNumber: "RCPT-2",
		PaymentDate: day(2024, 6, 12), Direction: domain.PaymentFromCustomer, Method: domain.PaymentBank, Amount: dec("100.00"),
	})

	_, err := env.svc.AutoPost.PostCustomerPayment(ctx, testCompany, "pay-1", alice)
	require.NoError(t, err)
	_, err = env.svc.AutoPost.PostCustomerPayment(ctx, testCompany, "pay-1", alice)

	assert.ErrorIs(t, err, domain.ErrDuplicatePosting)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.True(t, env.balanceByCode(t, "1020").Equal(dec("100")), "cash is booked once")
	env.assertLedgerReconciles(t)
}

func TestPostSalesInvoice_PostsOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutSalesInvoice(domain.SalesInvoice{
		InvoiceID:     "inv-9",
		CompanyID:     testCompany,
		InvoiceNumber: "INV-0009",
		InvoiceDate:   day(2024, 6, 10),
		Total:         dec("100"),
		Lines:         []domain.SalesInvoiceLine{{Description: "Widget", Quantity: dec("1"), UnitPrice: dec("100"), UnitCost: ptr(dec("40"))}},
	})

	entries, err := env.svc.AutoPost.PostSalesInvoice(ctx, testCompany, "inv-9", alice)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleRevenue, entries[0].Source.Role)
	assert.Equal(t, domain.RoleCostOfGoods, entries[1].Source.Role)

	_, err = env.svc.AutoPost.PostSalesInvoice(ctx, testCompany, "inv-9", alice)
	assert.ErrorIs(t, err, domain.ErrDuplicatePosting)
	assert.True(t, env.balanceByCode(t, "1100").Equal(dec("100")))
	assert.True(t, env.balanceByCode(t, "5000").Equal(dec("40")))
	env.assertLedgerReconciles(t)
}

func TestPostGoodsReceipt_OneEntryPerReceipt(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	for _, id := range []string{"gr-a", "gr-b"} {
		env.store.PutGoodsReceipt(domain.GoodsReceipt{
			ReceiptID:       id,
			CompanyID:       testCompany,
			PurchaseOrderID: "po-7",
			PONumber:        "PO-0007",
			ReceivedDate:    day(2024, 6, 5),
			Total:           dec("300"),
		})
	}

	_, err := env.svc.AutoPost.PostGoodsReceipt(ctx, testCompany, "gr-a", alice)
	require.NoError(t, err)
	_, err = env.svc.AutoPost.PostGoodsReceipt(ctx, testCompany, "gr-b", alice)
	require.NoError(t, err, "partial receipts of one order each post")
	_, err = env.svc.AutoPost.PostGoodsReceipt(ctx, testCompany, "gr-a", alice)
	assert.ErrorIs(t, err, domain.ErrDuplicatePosting)

	assert.True(t, env.balanceByCode(t, "1200").Equal(dec("600")))
}

func TestSalesInvoice_CostOfGoodsRoundsToStorageScale(t *testing.T) {
	inv := domain.SalesInvoice{Lines: []domain.SalesInvoiceLine{{Quantity: dec("3"), UnitPrice: dec("1"), UnitCost: ptr(dec("0.33333"))}}}

	total, known := inv.CostOfGoods()

	assert.True(t, known)
	assert.True(t, total.Equal(dec("1.0000")), "got %s", total)
}

func TestPostSupplierPayment_ConcurrentCallsPostOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.PutPayment(domain.Payment{
		PaymentID: "pay-2", CompanyID: testCompany, PaymentNumber: "DISB-2",
		PaymentDate: day(2024, 6, 12), Direction: domain.PaymentToSupplier, Method: domain.PaymentCash, Amount: dec("75"),
	})

	var posted, duplicates atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := env.svc.AutoPost.PostSupplierPayment(ctx, testCompany, "pay-2", alice)
			switch {
			case err == nil:
				posted.Add(1)
			case errors.Is(err, domain.ErrDuplicatePosting):
				duplicates.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), posted.Load())
	assert.Equal(t, int32(7), duplicates.Load())
	assert.True(t, env.balanceByCode(t, "1010").Equal(dec("-75")))
}
