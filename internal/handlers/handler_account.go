package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tatenda10/alamait-sub008/internal/core/ports/services"
	"github.com/tatenda10/alamait-sub008/internal/dto"
	"github.com/tatenda10/alamait-sub008/internal/middleware"
)

// accountHandler handles HTTP requests for the chart of accounts and the
// derived per-account views (balance, statement, periods).
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	postingService portssvc.PostingSvcFacade
	materializer   portssvc.MaterializerSvcFacade
	periodService  portssvc.PeriodSvcFacade
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, s portssvc.AccountSvcFacade, ps portssvc.PostingSvcFacade, ms portssvc.MaterializerSvcFacade, pds portssvc.PeriodSvcFacade) {
	h := &accountHandler{accountService: s, postingService: ps, materializer: ms, periodService: pds}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PUT("/:accountID", h.updateAccount)
		accounts.DELETE("/:accountID", h.deleteAccount)
		accounts.GET("/:accountID/balance", h.getBalance)
		accounts.GET("/:accountID/transactions", h.listEntries)
		accounts.GET("/:accountID/periods", h.listPeriods)
		accounts.GET("/:accountID/periods/:period", h.getPeriod)
		accounts.POST("/:accountID/periods/rebuild", h.rebuildPeriods)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromCtx(c.Request.Context())
	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	var params struct {
		Limit  int `form:"limit,default=100"`
		Offset int `form:"offset,default=0"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondWithError(c, err, "Failed to list accounts")
		return
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, gin.H{"accounts": responses})
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromCtx(c.Request.Context())
	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("accountID"), req, actor)
	if err != nil {
		respondWithError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) deleteAccount(c *gin.Context) {
	actor := middleware.GetActorFromCtx(c.Request.Context())
	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("accountID"), actor); err != nil {
		respondWithError(c, err, "Failed to deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}

// getBalance returns both the cached balance and the value recomputed from
// the journal log, so callers can see drift instead of trusting the cache
// blindly. Accepts an optional asOf bound on the recomputation.
func (h *accountHandler) getBalance(c *gin.Context) {
	accountID := c.Param("accountID")

	var asOf *time.Time
	if raw := c.Query("asOf"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf timestamp: " + err.Error()})
			return
		}
		asOf = &t
	}

	recomputed, err := h.materializer.Recompute(c.Request.Context(), accountID, asOf)
	if err != nil {
		respondWithError(c, err, "Failed to compute balance")
		return
	}

	cached := recomputed
	if asOf == nil {
		cached, err = h.materializer.GetCachedBalance(c.Request.Context(), accountID)
		if err != nil {
			respondWithError(c, err, "Failed to read cached balance")
			return
		}
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Cached: cached, Recomputed: recomputed})
}

func (h *accountHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.postingService.ListAccountEntries(c.Request.Context(), c.Param("accountID"), params)
	if err != nil {
		respondWithError(c, err, "Failed to list account entries")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *accountHandler) listPeriods(c *gin.Context) {
	rows, err := h.periodService.ListPeriodBalances(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondWithError(c, err, "Failed to list period balances")
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": rows})
}

func (h *accountHandler) getPeriod(c *gin.Context) {
	row, err := h.periodService.GetPeriodBalance(c.Request.Context(), c.Param("accountID"), c.Param("period"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve period balance")
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *accountHandler) rebuildPeriods(c *gin.Context) {
	actor := middleware.GetActorFromCtx(c.Request.Context())
	rows, err := h.periodService.RebuildPeriods(c.Request.Context(), c.Param("accountID"), actor)
	if err != nil {
		respondWithError(c, err, "Failed to rebuild period balances")
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": rows})
}
