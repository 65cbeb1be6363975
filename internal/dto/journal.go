package dto

import (
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit in a manual entry.
type JournalLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description" binding:"max=255"`
}

// CreateJournalEntryRequest defines the data for posting a manual journal entry.
// ApprovalRecordID is the record the approval request was raised against.
type CreateJournalEntryRequest struct {
	Date             time.Time            `json:"date" binding:"required"`
	Description      string               `json:"description" binding:"required,max=500"`
	Reference        string               `json:"reference" binding:"max=100"`
	ApprovalRecordID string               `json:"approvalRecordID" binding:"required"`
	Lines            []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ReverseJournalEntryRequest optionally dates the reversal.
type ReverseJournalEntryRequest struct {
	Date *time.Time `json:"date"`
}

// ListJournalEntriesParams defines the query parameters for listing entries.
type ListJournalEntriesParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken *string `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	LineNo      int             `json:"lineNo"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	EntryNumber     string                `json:"entryNumber"`
	Date            time.Time             `json:"date"`
	Description     string                `json:"description"`
	Reference       string                `json:"reference,omitempty"`
	TotalDebit      decimal.Decimal       `json:"totalDebit"`
	TotalCredit     decimal.Decimal       `json:"totalCredit"`
	Posted          bool                  `json:"posted"`
	ReversesEntryID *string               `json:"reversesEntryID,omitempty"`
	Source          *domain.SourceRef     `json:"source,omitempty"`
	Lines           []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
}

// ListJournalEntriesResponse is one page of entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:         e.EntryID,
		EntryNumber:     e.EntryNumber,
		Date:            e.EntryDate,
		Description:     e.Description,
		Reference:       e.Reference,
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		Posted:          e.Posted,
		ReversesEntryID: e.ReversesEntryID,
		Source:          e.Source,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, JournalLineResponse{
			LineID:      l.LineID,
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return resp
}

// ToJournalEntryResponses converts a slice of entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ToLineInputs converts request lines into poster input.
func ToLineInputs(lines []JournalLineRequest) []domain.LineInput {
	inputs := make([]domain.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = domain.LineInput{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return inputs
}
