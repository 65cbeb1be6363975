package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type periodLockHandler struct {
	periodLockService portssvc.PeriodLockSvc
}

func newPeriodLockHandler(ps portssvc.PeriodLockSvc) *periodLockHandler {
	return &periodLockHandler{periodLockService: ps}
}

// RegisterPeriodLockRoutes registers period closing routes under a company group.
func RegisterPeriodLockRoutes(rg *gin.RouterGroup, periodLockService portssvc.PeriodLockSvc) {
	h := newPeriodLockHandler(periodLockService)

	locks := rg.Group("/period-locks")
	{
		locks.POST("", h.lockPeriod)
		locks.GET("", h.listLocks)
		locks.GET("/check", h.checkDate)
		locks.GET("/suggestion", h.suggestNextPeriod)
		locks.POST("/:lock_id/unlock", h.unlockPeriod)
		locks.POST("/:lock_id/relock", h.relockPeriod)
	}
}

// lockPeriod godoc
// @Summary Close an accounting period
// @Tags period-locks
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   lock body dto.LockPeriodRequest true "Period range"
// @Success 201 {object} dto.PeriodLockResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Router /companies/{company_id}/period-locks [post]
func (h *periodLockHandler) lockPeriod(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}
	var req dto.LockPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	lock, err := h.periodLockService.LockPeriod(c.Request.Context(), companyID, req.PeriodStart, req.PeriodEnd, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to lock period")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPeriodLockResponse(lock))
}

// listLocks godoc
// @Summary List period locks
// @Tags period-locks
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {array} dto.PeriodLockResponse
// @Router /companies/{company_id}/period-locks [get]
func (h *periodLockHandler) listLocks(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}

	locks, err := h.periodLockService.ListLocks(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, logger, err, "Failed to list period locks")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodLockResponses(locks))
}

// checkDate godoc
// @Summary Check whether a date is in a closed period
// @Tags period-locks
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.DateLockedResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Router /companies/{company_id}/period-locks/check [get]
func (h *periodLockHandler) checkDate(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}
	raw := c.Query("date")
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		logger.Warn("Invalid date for period check", slog.String("date", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	locked := h.periodLockService.IsDateLocked(c.Request.Context(), companyID, date)
	c.JSON(http.StatusOK, dto.DateLockedResponse{Date: raw, Locked: locked})
}

// suggestNextPeriod godoc
// @Summary Suggest the next period to close
// @Tags period-locks
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.SuggestedPeriodResponse
// @Router /companies/{company_id}/period-locks/suggestion [get]
func (h *periodLockHandler) suggestNextPeriod(c *gin.Context) {
	companyID, _, logger, ok := requestScope(c)
	if !ok {
		return
	}

	start, end, err := h.periodLockService.SuggestNextPeriod(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, logger, err, "Failed to suggest next period")
		return
	}
	c.JSON(http.StatusOK, dto.SuggestedPeriodResponse{
		PeriodStart: start.Format(time.DateOnly),
		PeriodEnd:   end.Format(time.DateOnly),
	})
}

// unlockPeriod godoc
// @Summary Re-open a closed period
// @Description Administrative override. The lock record is kept and the action is audited.
// @Tags period-locks
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   lock_id path string true "Lock ID"
// @Success 200 {object} dto.PeriodLockResponse
// @Failure 404 {object} map[string]string "Lock not found"
// @Router /companies/{company_id}/period-locks/{lock_id}/unlock [post]
func (h *periodLockHandler) unlockPeriod(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}

	lock, err := h.periodLockService.UnlockPeriod(c.Request.Context(), companyID, c.Param("lock_id"), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to unlock period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodLockResponse(lock))
}

// relockPeriod godoc
// @Summary Close a previously re-opened period again
// @Tags period-locks
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   lock_id path string true "Lock ID"
// @Success 200 {object} dto.PeriodLockResponse
// @Failure 404 {object} map[string]string "Lock not found"
// @Router /companies/{company_id}/period-locks/{lock_id}/relock [post]
func (h *periodLockHandler) relockPeriod(c *gin.Context) {
	companyID, actorID, logger, ok := requestScope(c)
	if !ok {
		return
	}

	lock, err := h.periodLockService.RelockPeriod(c.Request.Context(), companyID, c.Param("lock_id"), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to relock period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodLockResponse(lock))
}
