package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
		reportingGroup.GET("/cash-flow", h.getCashFlow)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every non-zero account balance in debit and credit columns
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} domain.TrialBalanceReport
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /companies/{company_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getIncomeStatement godoc
// @Summary Generate income statement
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.IncomeStatement
// @Failure 400 {object} map[string]string "Invalid date range"
// @Router /companies/{company_id}/reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}
	from, to, ok := bindRange(c, logger)
	if !ok {
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), companyID, from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.BalanceSheetReport
// @Failure 400 {object} map[string]string "Invalid date"
// @Router /companies/{company_id}/reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	asOf, err := params.Date()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), companyID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getCashFlow godoc
// @Summary Generate cash flow report
// @Description Inflow and outflow on the liquid (cash and bank) accounts
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.CashFlowReport
// @Router /companies/{company_id}/reports/cash-flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}
	from, to, ok := bindRange(c, logger)
	if !ok {
		return
	}

	report, err := h.reportingService.CashFlow(c.Request.Context(), companyID, from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to generate cash flow report")
		return
	}
	c.JSON(http.StatusOK, report)
}
