package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// PostCustomerPayment books Dr Cash or Bank / Cr Accounts Receivable.
func (s *autoPostService) PostCustomerPayment(ctx context.Context, companyID, paymentID, actorID string) (*domain.JournalEntry, error) {
	return s.postPayment(ctx, companyID, paymentID, actorID, domain.PaymentFromCustomer)
}

// PostSupplierPayment books Dr Accounts Payable / Cr Cash or Bank.
func (s *autoPostService) PostSupplierPayment(ctx context.Context, companyID, paymentID, actorID string) (*domain.JournalEntry, error) {
	return s.postPayment(ctx, companyID, paymentID, actorID, domain.PaymentToSupplier)
}

func (s *autoPostService) postPayment(ctx context.Context, companyID, paymentID, actorID string, direction domain.PaymentDirection) (*domain.JournalEntry, error) {
	payment, err := s.docs.FindPayment(ctx, companyID, paymentID)
	if err != nil {
		return nil, documentError("find payment", err)
	}
	if payment.Direction != direction {
		return nil, fmt.Errorf("%w: payment %s is a %s payment", apperrors.ErrValidation, payment.PaymentNumber, payment.Direction)
	}
	if err := requirePositive("payment", payment.PaymentNumber, payment.Amount); err != nil {
		return nil, err
	}

	debit, credit := cashSide(payment.Method), stdAccountsReceivable
	description := fmt.Sprintf("Customer payment %s", payment.PaymentNumber)
	if direction == domain.PaymentToSupplier {
		debit, credit = stdAccountsPayable, cashSide(payment.Method)
		description = fmt.Sprintf("Supplier payment %s", payment.PaymentNumber)
	}

	ids, err := s.resolve(ctx, companyID, actorID, debit, credit)
	if err != nil {
		return nil, err
	}
	amount := payment.Amount
	entry, err := s.ledger.PostJournalEntry(ctx, domain.PostJournalRequest{
		CompanyID:   companyID,
		Date:        payment.PaymentDate,
		Description: description,
		Reference:   payment.PaymentNumber,
		Lines:       twoLine(ids[0], ids[1], amount, description),
		ActorID:     actorID,
		Source:      &domain.SourceRef{Module: domain.ModulePayment, RecordID: payment.PaymentID, Amount: &amount},
	})
	if err != nil {
		s.LogWarn(ctx, "Payment posting failed", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
		return nil, err
	}
	return entry, nil
}
