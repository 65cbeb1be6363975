package handlers

import (
	"net/http"

	"github.com/SscSPs/erp_ledger_engine/cmd/docs"
	portssvc "github.com/SscSPs/erp_ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger_engine/internal/middleware"
	"github.com/SscSPs/erp_ledger_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// A nil limiter disables rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, services, rateLimiter)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 company group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, service *portssvc.ServiceContainer, rateLimiter *limiter.Limiter) {
	chain := []gin.HandlerFunc{}
	if rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(rateLimiter))
	}
	chain = append(chain, middleware.RequireActor())

	company := r.Group("/api/v1/companies/:company_id", chain...)

	RegisterAccountRoutes(company, service.Account)
	RegisterJournalRoutes(company, service.Ledger)
	RegisterPeriodLockRoutes(company, service.PeriodLock)
	RegisterApprovalRoutes(company, service.Approval)
	RegisterAutoPostRoutes(company, service.AutoPost)
	RegisterReportingRoutes(company, service.Reporting)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
