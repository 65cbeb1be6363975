package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type approvalHandler struct {
	approvalService portssvc.ApprovalSvc
}

func newApprovalHandler(as portssvc.ApprovalSvc) *approvalHandler {
	return &approvalHandler{approvalService: as}
}

// RegisterApprovalRoutes registers approval routes under a company group.
func RegisterApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvc) {
	h := newApprovalHandler(approvalService)

	approvals := rg.Group("/approvals")
	{
		approvals.POST("", h.requestApproval)
		approvals.GET("/pending", h.listPending)
		approvals.GET("/status", h.approvalStatus)
		approvals.POST("/:request_id/decision", h.decide)
	}
}

// requestApproval godoc
// @Summary Request approval for a business record
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   request body dto.CreateApprovalRequest true "Module and record"
// @Success 201 {object} domain.ApprovalRequest
// @Failure 409 {object} map[string]string "An open request already exists"
// @Router /companies/{company_id}/approvals [post]
func (h *approvalHandler) requestApproval(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	var req dto.CreateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	approval, err := h.approvalService.RequestApproval(c.Request.Context(), companyID, req.Module, req.RecordID, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to request approval")
		return
	}
	c.JSON(http.StatusCreated, approval)
}

// listPending godoc
// @Summary List pending approval requests
// @Tags approvals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.ListApprovalRequestsResponse
// @Router /companies/{company_id}/approvals/pending [get]
func (h *approvalHandler) listPending(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}

	pending, err := h.approvalService.ListPending(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, logger, err, "Failed to list pending approvals")
		return
	}
	c.JSON(http.StatusOK, dto.ListApprovalRequestsResponse{Requests: pending})
}

// approvalStatus godoc
// @Summary Check whether a record is approved
// @Tags approvals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   module query string true "Module tag"
// @Param   recordID query string true "Record ID"
// @Success 200 {object} dto.ApprovalStatusResponse
// @Router /companies/{company_id}/approvals/status [get]
func (h *approvalHandler) approvalStatus(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}
	module, recordID := strings.ToUpper(c.Query("module")), c.Query("recordID")
	if module == "" || recordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "module and recordID are required"})
		return
	}

	approved, err := h.approvalService.IsApproved(c.Request.Context(), companyID, module, recordID)
	if err != nil {
		respondError(c, logger, err, "Failed to check approval")
		return
	}
	c.JSON(http.StatusOK, dto.ApprovalStatusResponse{Module: module, RecordID: recordID, Approved: approved})
}

// decide godoc
// @Summary Approve or reject a pending request
// @Description A request is decided once, and never by its requester.
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   request_id path string true "Request ID"
// @Param   decision body dto.DecideApprovalRequest true "Decision"
// @Success 200 {object} domain.ApprovalRequest
// @Failure 403 {object} map[string]string "Self approval"
// @Failure 409 {object} map[string]string "Already decided"
// @Router /companies/{company_id}/approvals/{request_id}/decision [post]
func (h *approvalHandler) decide(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	requestID := c.Param("request_id")
	var req dto.DecideApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger = logger.With(slog.String("request_id", requestID), slog.Bool("approve", *req.Approve))
	decided, err := h.approvalService.Decide(c.Request.Context(), companyID, requestID, actorID, *req.Approve, req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to decide approval request")
		return
	}
	c.JSON(http.StatusOK, decided)
}
