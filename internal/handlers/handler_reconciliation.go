package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/dto"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// reconciliationHandler handles HTTP requests for drift detection and the
// quarantine path.
type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

// registerReconciliationRoutes registers routes related to reconciliation.
func registerReconciliationRoutes(rg *gin.RouterGroup, s portssvc.ReconciliationSvcFacade, writeLimiter gin.HandlerFunc) {
	h := &reconciliationHandler{reconService: s}

	recon := rg.Group("/reconciliation")
	{
		recon.POST("/runs", writeLimiter, h.runReconciliation)
		recon.GET("/runs", h.listRuns)
		recon.GET("/runs/:runID", h.getRun)
		recon.GET("/duplicates", h.listDuplicates)
		recon.POST("/quarantine/:transactionID", writeLimiter, h.quarantine)
	}
}

func (h *reconciliationHandler) runReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	// Body is optional; an empty body means a full sweep.
	var req dto.ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for Reconcile", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	actor := middleware.GetActorFromCtx(c.Request.Context())
	report, err := h.reconService.Reconcile(c.Request.Context(), domain.ReconcileScope{AccountID: req.AccountID, Period: req.Period}, actor)
	if err != nil {
		respondWithError(c, err, "Failed to run reconciliation")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reconciliationHandler) listRuns(c *gin.Context) {
	var params struct {
		Limit int `form:"limit,default=20"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	runs, err := h.reconService.ListRuns(c.Request.Context(), params.Limit)
	if err != nil {
		respondWithError(c, err, "Failed to list reconciliation runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *reconciliationHandler) getRun(c *gin.Context) {
	run, err := h.reconService.GetRun(c.Request.Context(), c.Param("runID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve reconciliation run")
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *reconciliationHandler) listDuplicates(c *gin.Context) {
	groups, err := h.reconService.FindDuplicates(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to find duplicate transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicates": groups})
}

func (h *reconciliationHandler) quarantine(c *gin.Context) {
	actor := middleware.GetActorFromCtx(c.Request.Context())
	if err := h.reconService.Quarantine(c.Request.Context(), c.Param("transactionID"), actor); err != nil {
		respondWithError(c, err, "Failed to quarantine transaction")
		return
	}
	c.Status(http.StatusNoContent)
}
