package services

import (
	"context"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
)

// standardAccount is an entry of the chart the adapters create on demand.
type standardAccount struct {
	Code string
	Name string
	Type domain.AccountType
}

var (
	stdCash               = standardAccount{Code: "1010", Name: "Cash", Type: domain.Asset}
	stdBank               = standardAccount{Code: "1020", Name: "Bank", Type: domain.Asset}
	stdAccountsReceivable = standardAccount{Code: "1100", Name: "Accounts Receivable", Type: domain.Asset}
	stdInventory          = standardAccount{Code: "1200", Name: "Inventory Asset", Type: domain.Asset}
	stdAccountsPayable    = standardAccount{Code: "2100", Name: "Accounts Payable", Type: domain.Liability}
	stdSalesRevenue       = standardAccount{Code: "4000", Name: "Sales Revenue", Type: domain.Revenue}
	stdCostOfGoodsSold    = standardAccount{Code: "5000", Name: "Cost of Goods Sold", Type: domain.Expense}
)

// cashSide picks the liquid account a payment settles through.
func cashSide(method domain.PaymentMethod) standardAccount {
	if method == domain.PaymentCash {
		return stdCash
	}
	return stdBank
}

// resolve returns the ids of the given standard accounts, creating missing ones.
func (s *autoPostService) resolve(ctx context.Context, companyID, actorID string, accounts ...standardAccount) ([]string, error) {
	ids := make([]string, len(accounts))
	for i, std := range accounts {
		acc, err := s.accounts.GetOrCreateStandardAccount(ctx, companyID, std.Code, std.Name, std.Type, actorID)
		if err != nil {
			return nil, err
		}
		ids[i] = acc.AccountID
	}
	return ids, nil
}
