package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/SscSPs/fund_reconciliation/internal/middleware"
	"github.com/gin-gonic/gin"
)

type reversalHandler struct {
	reversalService portssvc.ReversalSvcFacade
}

func newReversalHandler(rs portssvc.ReversalSvcFacade) *reversalHandler {
	return &reversalHandler{reversalService: rs}
}

func registerReversalRoutes(rg *gin.RouterGroup, rs portssvc.ReversalSvcFacade, limit gin.HandlerFunc) {
	h := newReversalHandler(rs)

	reversals := rg.Group("/reversals")
	{
		reversals.POST("", limit, h.linkReversal)
		reversals.GET("/:transactionId", h.getReversalPairInfo)
		reversals.DELETE("/:transactionId", limit, h.unlinkReversal)
		reversals.GET("/:transactionId/candidates", h.findReversalCandidates)
	}
}

// findReversalCandidates godoc
// @Summary Find transactions that reverse a bank transaction
// @Description Without a date range the search covers the matching window around the source date.
// @Tags reversals
// @Produce json
// @Param transactionId path string true "Source bank transaction id"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.ReversalCandidatesResponse
// @Failure 400 {object} map[string]string "Invalid input or source already resolved"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /reconciliation/reversals/{transactionId}/candidates [get]
func (h *reversalHandler) findReversalCandidates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionId")

	var q dto.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind query for FindReversalCandidates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	var dateRange *domain.DateRange
	if q.StartDate != nil || q.EndDate != nil {
		r, err := dto.ParseDateRange(q.StartDate, q.EndDate)
		if err != nil {
			respondError(c, logger, err, "Failed to find reversal candidates")
			return
		}
		dateRange = &r
	}

	res, err := h.reversalService.FindReversalCandidates(c.Request.Context(), transactionID, dateRange)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to find reversal candidates")
		return
	}
	c.JSON(http.StatusOK, res)
}

// linkReversal godoc
// @Summary Link two bank transactions as a reversal pair
// @Description Both transactions become AUTO_APPROVED; their previous statuses are kept for unlinking.
// @Tags reversals
// @Accept json
// @Produce json
// @Param pair body dto.LinkReversalRequest true "Transactions to link"
// @Success 201 {object} domain.ReversalPair
// @Failure 400 {object} map[string]string "Transactions do not offset each other"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already matched or resolved"
// @Security BearerAuth
// @Router /reconciliation/reversals [post]
func (h *reversalHandler) linkReversal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LinkReversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for LinkReversal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	pair, err := h.reversalService.LinkReversal(c.Request.Context(), req.FirstTransactionID, req.SecondTransactionID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to link reversal")
		return
	}
	c.JSON(http.StatusCreated, pair)
}

// unlinkReversal godoc
// @Summary Unlink a reversal pair
// @Description Both members get back the status they held before linking.
// @Tags reversals
// @Param transactionId path string true "Either member of the pair"
// @Success 204 "Pair removed"
// @Failure 404 {object} map[string]string "No reversal pair"
// @Failure 409 {object} map[string]string "A member is already resolved"
// @Security BearerAuth
// @Router /reconciliation/reversals/{transactionId} [delete]
func (h *reversalHandler) unlinkReversal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionId")
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	if err := h.reversalService.UnlinkReversal(c.Request.Context(), transactionID, actor); err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to unlink reversal")
		return
	}
	c.Status(http.StatusNoContent)
}

// getReversalPairInfo godoc
// @Summary Get the reversal pair of a bank transaction
// @Tags reversals
// @Produce json
// @Param transactionId path string true "Either member of the pair"
// @Success 200 {object} dto.ReversalPairInfo
// @Failure 404 {object} map[string]string "No reversal pair"
// @Security BearerAuth
// @Router /reconciliation/reversals/{transactionId} [get]
func (h *reversalHandler) getReversalPairInfo(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionId")

	info, err := h.reversalService.GetReversalPairInfo(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to load reversal pair")
		return
	}
	c.JSON(http.StatusOK, info)
}
