package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/dto"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// postingHandler handles HTTP requests for the journal-log writer.
type postingHandler struct {
	postingService portssvc.PostingSvcFacade
}

// registerPostingRoutes registers routes related to transactions.
func registerPostingRoutes(rg *gin.RouterGroup, s portssvc.PostingSvcFacade, writeLimiter gin.HandlerFunc) {
	h := &postingHandler{postingService: s}

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", writeLimiter, h.postTransaction)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.POST("/:transactionID/reverse", writeLimiter, h.reverseTransaction)
	}
}

func (h *postingHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromCtx(c.Request.Context())
	txn, err := h.postingService.Post(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to post transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *postingHandler) getTransaction(c *gin.Context) {
	txn, err := h.postingService.GetTransaction(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *postingHandler) reverseTransaction(c *gin.Context) {
	actor := middleware.GetActorFromCtx(c.Request.Context())
	reversal, err := h.postingService.Reverse(c.Request.Context(), c.Param("transactionID"), actor)
	if err != nil {
		respondWithError(c, err, "Failed to reverse transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}
