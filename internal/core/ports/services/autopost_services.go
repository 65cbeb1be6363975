package services

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// AutoPostSvc derives ledger entries from business documents.
type AutoPostSvc interface {
	// PostSalesInvoice books receivable and revenue, plus cost of goods when unit costs are known.
	PostSalesInvoice(ctx context.Context, companyID, invoiceID, actorID string) ([]domain.JournalEntry, error)

	// PostGoodsReceipt books received inventory against payables.
	PostGoodsReceipt(ctx context.Context, companyID, receiptID, actorID string) (*domain.JournalEntry, error)

	// PostCustomerPayment books cash or bank against receivables.
	PostCustomerPayment(ctx context.Context, companyID, paymentID, actorID string) (*domain.JournalEntry, error)

	// PostSupplierPayment books payables against cash or bank.
	PostSupplierPayment(ctx context.Context, companyID, paymentID, actorID string) (*domain.JournalEntry, error)
}
