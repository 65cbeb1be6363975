package memory

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// PutSalesInvoice stores an invoice as the sales workflow would.
func (s *Store) PutSalesInvoice(inv domain.SalesInvoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.InvoiceID] = inv
}

// PutGoodsReceipt stores a receipt as the purchasing workflow would.
func (s *Store) PutGoodsReceipt(r domain.GoodsReceipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[r.ReceiptID] = r
}

// PutPayment stores a payment as the treasury workflow would.
func (s *Store) PutPayment(p domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.PaymentID] = p
}

func (s *Store) FindSalesInvoice(_ context.Context, companyID, invoiceID string) (*domain.SalesInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[invoiceID]
	if !ok || inv.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return &inv, nil
}

func (s *Store) FindGoodsReceipt(_ context.Context, companyID, receiptID string) (*domain.GoodsReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[receiptID]
	if !ok || r.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (s *Store) FindPayment(_ context.Context, companyID, paymentID string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok || p.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}
