package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places money is stored with.
const AmountScale = 4

// Posting roles distinguish the entries one document legitimately produces.
const (
	RoleRevenue     = "REVENUE"
	RoleCostOfGoods = "COGS"
)

// SourceRef identifies the business record that produced a journal entry.
// Module and RecordID are the approval key. Module, DocumentKey and Role are the posting key:
// at most one non-reversal entry may exist per posting key.
type SourceRef struct {
	Module     string           `json:"module"`
	RecordID   string           `json:"recordID"`
	DocumentID string           `json:"documentID,omitempty"` // set when the posted document differs from the approved record
	Role       string           `json:"role,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

// DocumentKey is the document the entry posts. It falls back to RecordID.
func (s SourceRef) DocumentKey() string {
	if s.DocumentID != "" {
		return s.DocumentID
	}
	return s.RecordID
}

// JournalEntry is a dated, balanced group of lines. Entries are posted on creation and immutable.
type JournalEntry struct {
	EntryID         string          `json:"entryID"`     // Primary Key (UUID)
	CompanyID       string          `json:"companyID"`   // Owning company
	EntryNumber     string          `json:"entryNumber"` // Display number, not a key
	EntryDate       time.Time       `json:"entryDate"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference"` // Optional external reference
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	Posted          bool            `json:"posted"`
	ReversesEntryID *string         `json:"reversesEntryID,omitempty"`
	Source          *SourceRef      `json:"source,omitempty"`
	Lines           []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// PostingKey returns the key that makes the entry unique per source document.
// Reversals and entries without a document have none.
func (e JournalEntry) PostingKey() (string, bool) {
	if e.Source == nil || e.ReversesEntryID != nil || e.Source.DocumentKey() == "" {
		return "", false
	}
	return e.CompanyID + "|" + e.Source.Module + "|" + e.Source.DocumentKey() + "|" + e.Source.Role, true
}

// JournalLine is a single debit or credit against one account.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LineNo      int             `json:"lineNo"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// NetDebit is the line's effect on the referenced account balance.
func (l JournalLine) NetDebit() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// LineInput is caller-supplied line data before the poster assigns identities.
type LineInput struct {
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// PostJournalRequest carries everything the poster needs to commit one entry.
type PostJournalRequest struct {
	CompanyID   string
	Date        time.Time
	Description string
	Reference   string
	Lines       []LineInput
	ActorID     string
	Source      *SourceRef
}
