package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxDocumentRepository reads the sales, purchasing and treasury tables written by their own workflows.
type PgxDocumentRepository struct {
	BaseRepository
}

func newPgxDocumentRepository(pool *pgxpool.Pool) *PgxDocumentRepository {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentSource = (*PgxDocumentRepository)(nil)

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func (r *PgxDocumentRepository) FindSalesInvoice(ctx context.Context, companyID, invoiceID string) (*domain.SalesInvoice, error) {
	var inv domain.SalesInvoice
	err := r.Pool.QueryRow(ctx, `
		SELECT invoice_id, company_id, invoice_number, invoice_date, total
		FROM sales_invoices
		WHERE company_id = $1 AND invoice_id = $2;`, companyID, invoiceID).
		Scan(&inv.InvoiceID, &inv.CompanyID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.Total)
	if err != nil {
		return nil, notFoundOr(err, "failed to find sales invoice %s", invoiceID)
	}
	inv.InvoiceDate = domain.DateOnly(inv.InvoiceDate)

	rows, err := r.Pool.Query(ctx, `
		SELECT description, quantity, unit_price, unit_cost
		FROM sales_invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_no;`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for sales invoice %s: %w", invoiceID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.SalesInvoiceLine
		var cost decimal.NullDecimal
		if err := rows.Scan(&l.Description, &l.Quantity, &l.UnitPrice, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan sales invoice line: %w", err)
		}
		if cost.Valid {
			l.UnitCost = &cost.Decimal
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales invoice lines: %w", err)
	}
	return &inv, nil
}

func (r *PgxDocumentRepository) FindGoodsReceipt(ctx context.Context, companyID, receiptID string) (*domain.GoodsReceipt, error) {
	var gr domain.GoodsReceipt
	err := r.Pool.QueryRow(ctx, `
		SELECT receipt_id, company_id, purchase_order_id, po_number, received_date, total
		FROM goods_receipts
		WHERE company_id = $1 AND receipt_id = $2;`, companyID, receiptID).
		Scan(&gr.ReceiptID, &gr.CompanyID, &gr.PurchaseOrderID, &gr.PONumber, &gr.ReceivedDate, &gr.Total)
	if err != nil {
		return nil, notFoundOr(err, "failed to find goods receipt %s", receiptID)
	}
	gr.ReceivedDate = domain.DateOnly(gr.ReceivedDate)
	return &gr, nil
}

func (r *PgxDocumentRepository) FindPayment(ctx context.Context, companyID, paymentID string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.Pool.QueryRow(ctx, `
		SELECT payment_id, company_id, payment_number, payment_date, direction, method, amount
		FROM payments
		WHERE company_id = $1 AND payment_id = $2;`, companyID, paymentID).
		Scan(&p.PaymentID, &p.CompanyID, &p.PaymentNumber, &p.PaymentDate, &p.Direction, &p.Method, &p.Amount)
	if err != nil {
		return nil, notFoundOr(err, "failed to find payment %s", paymentID)
	}
	p.PaymentDate = domain.DateOnly(p.PaymentDate)
	return &p, nil
}
