package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type autoPostHandler struct {
	autoPostService portssvc.AutoPostSvc
}

func newAutoPostHandler(as portssvc.AutoPostSvc) *autoPostHandler {
	return &autoPostHandler{autoPostService: as}
}

// RegisterAutoPostRoutes registers the business-event posting routes under a company group.
func RegisterAutoPostRoutes(rg *gin.RouterGroup, autoPostService portssvc.AutoPostSvc) {
	h := newAutoPostHandler(autoPostService)

	postings := rg.Group("/postings")
	{
		postings.POST("/sales-invoices", h.postSalesInvoice)
		postings.POST("/goods-receipts", h.single("goods receipt", autoPostService.PostGoodsReceipt))
		postings.POST("/customer-payments", h.single("customer payment", autoPostService.PostCustomerPayment))
		postings.POST("/supplier-payments", h.single("supplier payment", autoPostService.PostSupplierPayment))
	}
}

// postSalesInvoice godoc
// @Summary Post a finalized sales invoice
// @Description Books receivable and revenue, plus cost of goods sold when line costs are known
// @Tags postings
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   document body dto.PostSourceDocumentRequest true "Invoice ID"
// @Success 201 {object} dto.AutoPostResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Period closed"
// @Router /companies/{company_id}/postings/sales-invoices [post]
func (h *autoPostHandler) postSalesInvoice(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	var req dto.PostSourceDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	entries, err := h.autoPostService.PostSalesInvoice(c.Request.Context(), companyID, req.DocumentID, actorID)
	if err != nil {
		respondError(c, logger.With(slog.String("document_id", req.DocumentID)), err, "Failed to post sales invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.AutoPostResponse{Entries: dto.ToJournalEntryResponses(entries)})
}

type singlePoster func(ctx context.Context, companyID, documentID, actorID string) (*domain.JournalEntry, error)

// single adapts the one-entry adapters to a handler.
func (h *autoPostHandler) single(kind string, post singlePoster) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, actorID, logger, ok := requestScope(c)
		if !ok {
			return
		}
		var req dto.PostSourceDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err)
			return
		}

		entry, err := post(c.Request.Context(), companyID, req.DocumentID, actorID)
		if err != nil {
			respondError(c, logger.With(slog.String("document_id", req.DocumentID)), err, "Failed to post "+kind)
			return
		}
		c.JSON(http.StatusCreated, dto.AutoPostResponse{Entries: []dto.JournalEntryResponse{dto.ToJournalEntryResponse(entry)}})
	}
}
