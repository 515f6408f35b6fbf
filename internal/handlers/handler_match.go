package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/SscSPs/fund_reconciliation/internal/middleware"
	"github.com/gin-gonic/gin"
)

type manualMatchHandler struct {
	manualMatchService portssvc.ManualMatchSvcFacade
}

func newManualMatchHandler(ms portssvc.ManualMatchSvcFacade) *manualMatchHandler {
	return &manualMatchHandler{manualMatchService: ms}
}

func registerManualMatchRoutes(rg *gin.RouterGroup, ms portssvc.ManualMatchSvcFacade, limit gin.HandlerFunc) {
	h := newManualMatchHandler(ms)

	matches := rg.Group("/matches", limit)
	{
		matches.POST("", h.createManualMatch)
		matches.POST("/remove", h.removeManualMatch)
	}
}

// createManualMatch godoc
// @Summary Match transactions by hand
// @Description Groups reviewer-chosen bank and goal transactions of one goal. Amounts outside tolerance are allowed and reported.
// @Tags matches
// @Accept json
// @Produce json
// @Param match body dto.ManualMatchRequest true "Transactions to match"
// @Success 201 {object} dto.ManualMatchResponse
// @Failure 400 {object} map[string]string "Invalid input or mixed goals"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already matched or resolved"
// @Security BearerAuth
// @Router /reconciliation/matches [post]
func (h *manualMatchHandler) createManualMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateManualMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	res, err := h.manualMatchService.CreateManualMatch(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create manual match")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// removeManualMatch godoc
// @Summary Release match groups
// @Description Every member of each group containing one of the bank transactions goes back to PENDING.
// @Tags matches
// @Accept json
// @Produce json
// @Param match body dto.RemoveMatchRequest true "Bank transactions whose groups are released"
// @Success 200 {object} dto.RemoveMatchResponse
// @Failure 400 {object} map[string]string "Invalid input or transaction not matched"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "A member is already resolved"
// @Security BearerAuth
// @Router /reconciliation/matches/remove [post]
func (h *manualMatchHandler) removeManualMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RemoveMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RemoveManualMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	res, err := h.manualMatchService.RemoveManualMatch(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to remove match")
		return
	}
	c.JSON(http.StatusOK, res)
}
