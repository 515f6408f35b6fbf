package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/SscSPs/fund_reconciliation/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reviewHandler handles tagging and resolution of transactions.
type reviewHandler struct {
	reviewService portssvc.ReviewSvcFacade
}

func newReviewHandler(rs portssvc.ReviewSvcFacade) *reviewHandler {
	return &reviewHandler{reviewService: rs}
}

func registerReviewRoutes(rg *gin.RouterGroup, rs portssvc.ReviewSvcFacade, limit gin.HandlerFunc) {
	h := newReviewHandler(rs)

	reviews := rg.Group("/reviews", limit)
	{
		reviews.POST("", h.reviewTransaction)
		reviews.POST("/bulk", h.bulkReview)
		reviews.POST("/resolve", h.resolveTransaction)
	}
}

// reviewTransaction godoc
// @Summary Tag a transaction
// @Description Investigation tags move the transaction to MANUAL_REVIEW; other tags only classify it.
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body dto.ReviewTransactionRequest true "Review"
// @Success 204 "Tag applied"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already resolved"
// @Security BearerAuth
// @Router /reconciliation/reviews [post]
func (h *reviewHandler) reviewTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReviewTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReviewTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	reviewer, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("transaction_id", req.TransactionID), slog.String("side", req.Side))

	if err := h.reviewService.ReviewTransaction(c.Request.Context(), req, reviewer); err != nil {
		respondError(c, logger, err, "Failed to review transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// bulkReview godoc
// @Summary Tag many transactions at once
// @Description All listed transactions are tagged or none are.
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body dto.BulkReviewRequest true "Bulk review"
// @Success 200 {object} dto.BulkReviewResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "A transaction is already resolved"
// @Security BearerAuth
// @Router /reconciliation/reviews/bulk [post]
func (h *reviewHandler) bulkReview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkReview", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	reviewer, ok := requireActor(c, logger)
	if !ok {
		return
	}

	res, err := h.reviewService.BulkReview(c.Request.Context(), req, reviewer)
	if err != nil {
		respondError(c, logger, err, "Failed to apply bulk review")
		return
	}
	c.JSON(http.StatusOK, res)
}

// resolveTransaction godoc
// @Summary Approve or reject a transaction
// @Tags reviews
// @Accept json
// @Produce json
// @Param decision body dto.ResolveTransactionRequest true "Decision"
// @Success 200 {object} dto.ResolveTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /reconciliation/reviews/resolve [post]
func (h *reviewHandler) resolveTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ResolveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolveTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	reviewer, ok := requireActor(c, logger)
	if !ok {
		return
	}

	res, err := h.reviewService.ResolveTransaction(c.Request.Context(), req, reviewer)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", req.TransactionID)), err, "Failed to resolve transaction")
		return
	}
	logger.Info("Transaction resolved", slog.String("transaction_id", res.TransactionID), slog.String("to", res.To))
	c.JSON(http.StatusOK, res)
}
