package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// PostGoodsReceipt books Dr Inventory / Cr Accounts Payable for the received total.
// The purchase order is the approval key, so large orders need an approved PO. The receipt is the
// posting key since several receipts can fill one order.
func (s *autoPostService) PostGoodsReceipt(ctx context.Context, companyID, receiptID, actorID string) (*domain.JournalEntry, error) {
	receipt, err := s.docs.FindGoodsReceipt(ctx, companyID, receiptID)
	if err != nil {
		return nil, documentError("find goods receipt", err)
	}
	if err := requirePositive("goods receipt for", receipt.PONumber, receipt.Total); err != nil {
		return nil, err
	}

	ids, err := s.resolve(ctx, companyID, actorID, stdInventory, stdAccountsPayable)
	if err != nil {
		return nil, err
	}
	total := receipt.Total
	entry, err := s.ledger.PostJournalEntry(ctx, domain.PostJournalRequest{
		CompanyID:   companyID,
		Date:        receipt.ReceivedDate,
		Description: fmt.Sprintf("Goods received for %s", receipt.PONumber),
		Reference:   receipt.PONumber,
		Lines:       twoLine(ids[0], ids[1], total, "Receipt "+receipt.PONumber),
		ActorID:     actorID,
		Source:      &domain.SourceRef{Module: domain.ModulePurchaseOrder, RecordID: receipt.PurchaseOrderID, DocumentID: receipt.ReceiptID, Amount: &total},
	})
	if err != nil {
		s.LogWarn(ctx, "Goods receipt posting failed", slog.String("receipt_id", receiptID), slog.String("error", err.Error()))
		return nil, err
	}
	return entry, nil
}
