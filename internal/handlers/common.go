package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/erp_ledger_engine/internal/dto"
	"github.com/SscSPs/erp_ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestScope pulls the company, actor and request logger shared by every company route.
// It writes a response and returns false when the actor is missing.
func requestScope(c *gin.Context) (companyID, actorID string, logger *slog.Logger, ok bool) {
	logger = middleware.GetLoggerFromContext(c)
	companyID = c.Param("company_id")

	actorID, ok = middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", logger, false
	}
	return companyID, actorID, logger.With(slog.String("actor_id", actorID)), true
}

// bindRange parses optional from/to query dates. It writes a 400 and returns false on bad input.
func bindRange(c *gin.Context, logger *slog.Logger) (*time.Time, *time.Time, bool) {
	var params dto.ReportRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return nil, nil, false
	}
	from, to, err := params.Bounds()
	if err != nil {
		logger.Warn("Invalid report range", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return from, to, true
}
