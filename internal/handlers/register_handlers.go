package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
	"github.com/tatenda10/alamait-sub008/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	writeLimiter *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services, writeLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the
// per-entity route registrations. Write endpoints additionally carry the
// rate limiter so a misbehaving fix script cannot hammer the posting path.
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer, writeLimiter *limiter.Limiter) {
	v1 := r.Group("/api/v1", middleware.ActorMiddleware())

	limit := middleware.RateLimit(writeLimiter)

	registerAccountRoutes(v1, services.Account, services.Posting, services.Materializer, services.Period)
	registerPostingRoutes(v1, services.Posting, limit)
	registerStudentRoutes(v1, services.StudentLedger, limit)
	registerReconciliationRoutes(v1, services.Reconciliation, limit)
	registerReportingRoutes(v1, services.Reporting)
}
