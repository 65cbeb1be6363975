package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for manual journal entries.
type journalHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newJournalHandler(ls portssvc.LedgerSvcFacade) *journalHandler {
	return &journalHandler{ledgerService: ls}
}

// RegisterJournalRoutes registers routes related to journal entries under a company group.
func RegisterJournalRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newJournalHandler(ledgerService)

	journals := rg.Group("/journal-entries")
	{
		journals.POST("", h.postJournalEntry)
		journals.GET("", h.listJournalEntries)
		journals.GET("/:entry_id", h.getJournalEntry)
		journals.POST("/:entry_id/reverse", h.reverseJournalEntry)
	}
}

// postJournalEntry godoc
// @Summary Post a manual journal entry
// @Description Posts a balanced entry. Manual entries require an approved JOURNAL_ENTRY request for approvalRecordID.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Unbalanced or malformed entry"
// @Failure 403 {object} map[string]string "Approval required"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 409 {object} map[string]string "Period closed or approval record already posted"
// @Router /companies/{company_id}/journal-entries [post]
func (h *journalHandler) postJournalEntry(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger.Info("Received request to post journal entry", slog.Int("lines", len(req.Lines)), slog.String("approval_record_id", req.ApprovalRecordID))

	entry, err := h.ledgerService.PostJournalEntry(c.Request.Context(), domain.PostJournalRequest{
		CompanyID:   companyID,
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		Lines:       dto.ToLineInputs(req.Lines),
		ActorID:     actorID,
		Source:      &domain.SourceRef{Module: domain.ModuleJournalEntry, RecordID: req.ApprovalRecordID},
	})
	if err != nil {
		respondError(c, logger, err, "Failed to post journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Lists entry headers newest first with token-based pagination
// @Tags journal-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Router /companies/{company_id}/journal-entries [get]
func (h *journalHandler) listJournalEntries(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	resp, err := h.ledgerService.ListJournalEntries(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getJournalEntry godoc
// @Summary Get a journal entry with its lines
// @Tags journal-entries
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /companies/{company_id}/journal-entries/{entry_id} [get]
func (h *journalHandler) getJournalEntry(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetJournalEntry(c.Request.Context(), companyID, c.Param("entry_id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseJournalEntry godoc
// @Summary Reverse a journal entry
// @Description Posts the mirror image of an entry. An entry can be reversed once.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   entry_id path string true "Entry ID"
// @Param   reversal body dto.ReverseJournalEntryRequest false "Optional reversal date"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Already reversed or period closed"
// @Router /companies/{company_id}/journal-entries/{entry_id}/reverse [post]
func (h *journalHandler) reverseJournalEntry(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	entryID := c.Param("entry_id")

	var req dto.ReverseJournalEntryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err)
			return
		}
	}

	logger = logger.With(slog.String("entry_id", entryID))
	reversal, err := h.ledgerService.PostReversingEntry(c.Request.Context(), companyID, entryID, req.Date, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal entry")
		return
	}

	logger.Info("Journal entry reversed", slog.String("reversal_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}
