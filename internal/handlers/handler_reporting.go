package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
)

// reportingHandler handles HTTP requests for read-only financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, s portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingService: s}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/income-statement", h.incomeStatement)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/debtors", h.debtors)
	}
}

// parseTimeQuery reads an RFC3339 query parameter, defaulting to now.
func parseTimeQuery(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " timestamp: " + err.Error()})
		return time.Time{}, false
	}
	return t, true
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	asOf, ok := parseTimeQuery(c, "asOf", time.Now().UTC())
	if !ok {
		return
	}

	rows, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"asOf": asOf, "rows": rows})
}

func (h *reportingHandler) incomeStatement(c *gin.Context) {
	now := time.Now().UTC()
	from, ok := parseTimeQuery(c, "from", now.AddDate(0, -1, 0))
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to", now)
	if !ok {
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to)
	if err != nil {
		respondWithError(c, err, "Failed to build income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	asOf, ok := parseTimeQuery(c, "asOf", time.Now().UTC())
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, err, "Failed to build balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) debtors(c *gin.Context) {
	rows, err := h.reportingService.Debtors(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to build debtors report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"debtors": rows})
}
