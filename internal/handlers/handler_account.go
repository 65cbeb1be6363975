package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// RegisterAccountRoutes registers routes related to accounts under a company group.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:account_id", h.getAccount)
		accounts.PUT("/:account_id", h.updateAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the company's chart of accounts. Codes are unique per company.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account code already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Router /companies/{company_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", string(req.AccountType)))

	account, err := h.accountService.CreateAccount(c.Request.Context(), companyID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the company's chart of accounts ordered by code
// @Tags accounts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /companies/{company_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /companies/{company_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}
	accountID := c.Param("account_id")

	account, err := h.accountService.GetAccount(c.Request.Context(), companyID, accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("target_account_id", accountID)), err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates name, type or parent. The code and balance cannot be changed.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /companies/{company_id}/accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	accountID := c.Param("account_id")
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID))
	account, err := h.accountService.UpdateAccount(c.Request.Context(), companyID, accountID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
