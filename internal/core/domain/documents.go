package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source documents are owned by the sales, purchasing and treasury workflows.
// The ledger only reads them.

// SalesInvoice is a finalized customer invoice.
type SalesInvoice struct {
	InvoiceID     string
	CompanyID     string
	InvoiceNumber string
	InvoiceDate   time.Time
	Total         decimal.Decimal
	Lines         []SalesInvoiceLine
}

// SalesInvoiceLine is one invoiced item. UnitCost is nil when the cost is unknown.
type SalesInvoiceLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	UnitCost    *decimal.Decimal
}

// CostOfGoods sums quantity times unit cost over lines with a known cost, rounded to AmountScale.
// The second return is false when no line carries a cost.
func (inv SalesInvoice) CostOfGoods() (decimal.Decimal, bool) {
	total := decimal.Zero
	known := false
	for _, l := range inv.Lines {
		if l.UnitCost == nil {
			continue
		}
		known = true
		total = total.Add(l.Quantity.Mul(*l.UnitCost))
	}
	return total.Round(AmountScale), known
}

// GoodsReceipt is the receipt of goods against a purchase order.
type GoodsReceipt struct {
	ReceiptID       string
	CompanyID       string
	PurchaseOrderID string
	PONumber        string
	ReceivedDate    time.Time
	Total           decimal.Decimal
}

// PaymentDirection distinguishes incoming from outgoing payments.
type PaymentDirection string

const (
	PaymentFromCustomer PaymentDirection = "CUSTOMER"
	PaymentToSupplier   PaymentDirection = "SUPPLIER"
)

// PaymentMethod selects the cash-side account.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentBank PaymentMethod = "BANK"
)

// Payment is a captured customer receipt or supplier disbursement.
type Payment struct {
	PaymentID     string
	CompanyID     string
	PaymentNumber string
	PaymentDate   time.Time
	Direction     PaymentDirection
	Method        PaymentMethod
	Amount        decimal.Decimal
}
