package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// DocumentSource reads the business documents owned by the originating workflows.
type DocumentSource interface {
	FindSalesInvoice(ctx context.Context, companyID, invoiceID string) (*domain.SalesInvoice, error)
	FindGoodsReceipt(ctx context.Context, companyID, receiptID string) (*domain.GoodsReceipt, error)
	FindPayment(ctx context.Context, companyID, paymentID string) (*domain.Payment, error)
}
