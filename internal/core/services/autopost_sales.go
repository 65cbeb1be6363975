package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// PostSalesInvoice books Dr Accounts Receivable / Cr Sales Revenue for the invoice total and,
// when line costs are known, Dr Cost of Goods Sold / Cr Inventory. Both entries commit together
// and an invoice posts at most once.
func (s *autoPostService) PostSalesInvoice(ctx context.Context, companyID, invoiceID, actorID string) ([]domain.JournalEntry, error) {
	inv, err := s.docs.FindSalesInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, documentError("find sales invoice", err)
	}
	if err := requirePositive("sales invoice", inv.InvoiceNumber, inv.Total); err != nil {
		return nil, err
	}

	ids, err := s.resolve(ctx, companyID, actorID, stdAccountsReceivable, stdSalesRevenue)
	if err != nil {
		return nil, err
	}
	total := inv.Total
	reqs := []domain.PostJournalRequest{{
		CompanyID:   companyID,
		Date:        inv.InvoiceDate,
		Description: fmt.Sprintf("Sales invoice %s", inv.InvoiceNumber),
		Reference:   inv.InvoiceNumber,
		Lines:       twoLine(ids[0], ids[1], total, "Invoice "+inv.InvoiceNumber),
		ActorID:     actorID,
		Source:      &domain.SourceRef{Module: domain.ModuleSalesInvoice, RecordID: inv.InvoiceID, Role: domain.RoleRevenue, Amount: &total},
	}}

	if cost, known := inv.CostOfGoods(); known && cost.IsPositive() {
		costIDs, err := s.resolve(ctx, companyID, actorID, stdCostOfGoodsSold, stdInventory)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, domain.PostJournalRequest{
			CompanyID:   companyID,
			Date:        inv.InvoiceDate,
			Description: fmt.Sprintf("Cost of goods sold for %s", inv.InvoiceNumber),
			Reference:   inv.InvoiceNumber,
			Lines:       twoLine(costIDs[0], costIDs[1], cost, "COGS "+inv.InvoiceNumber),
			ActorID:     actorID,
			Source:      &domain.SourceRef{Module: domain.ModuleSalesInvoice, RecordID: inv.InvoiceID, Role: domain.RoleCostOfGoods, Amount: &cost},
		})
	}

	entries, err := s.ledger.PostJournalEntries(ctx, reqs)
	if err != nil {
		s.LogWarn(ctx, "Sales invoice posting failed", slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
		return nil, err
	}
	s.LogInfo(ctx, "Sales invoice posted", slog.String("invoice_id", invoiceID), slog.Int("entries", len(entries)))
	return entries, nil
}
