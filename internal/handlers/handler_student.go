package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/dto"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// studentHandler handles HTTP requests for the student sub-ledger.
type studentHandler struct {
	studentService portssvc.StudentLedgerSvcFacade
}

// registerStudentRoutes registers routes related to student balances.
func registerStudentRoutes(rg *gin.RouterGroup, s portssvc.StudentLedgerSvcFacade, writeLimiter gin.HandlerFunc) {
	h := &studentHandler{studentService: s}

	students := rg.Group("/students")
	{
		students.POST("/:studentID/charges", writeLimiter, h.postCharge)
		students.POST("/:studentID/payments", writeLimiter, h.postPayment)
		students.GET("/:studentID/balance", h.getBalance)
		students.GET("/balances", h.listBalances)
	}
}

func (h *studentHandler) postCharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.StudentChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostStudentCharge", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromCtx(c.Request.Context())
	resp, err := h.studentService.PostStudentCharge(c.Request.Context(), c.Param("studentID"), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to post student charge")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *studentHandler) postPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.StudentPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostStudentPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromCtx(c.Request.Context())
	resp, err := h.studentService.PostStudentPayment(c.Request.Context(), c.Param("studentID"), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to post student payment")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *studentHandler) getBalance(c *gin.Context) {
	enrollmentID := c.Query("enrollmentID")
	if enrollmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enrollmentID query parameter is required"})
		return
	}

	balance, err := h.studentService.GetStudentBalance(c.Request.Context(), c.Param("studentID"), enrollmentID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve student balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *studentHandler) listBalances(c *gin.Context) {
	balances, err := h.studentService.ListStudentBalances(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to list student balances")
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}
