package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/SscSPs/fund_reconciliation/internal/middleware"
	"github.com/gin-gonic/gin"
)

type batchHandler struct {
	batchService portssvc.BatchSvcFacade
}

func newBatchHandler(bs portssvc.BatchSvcFacade) *batchHandler {
	return &batchHandler{batchService: bs}
}

func registerBatchRoutes(rg *gin.RouterGroup, bs portssvc.BatchSvcFacade) {
	h := newBatchHandler(bs)

	rg.GET("/batches", h.listBatches)
	rg.GET("/batches/:batchNumber", h.getBatch)
	rg.GET("/history/:side/:transactionRef", h.listStatusHistory)
}

// listBatches godoc
// @Summary List reconciliation runs
// @Tags batches
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListBatchesResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Security BearerAuth
// @Router /reconciliation/batches [get]
func (h *batchHandler) listBatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBatchesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListBatches", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	res, err := h.batchService.ListBatches(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list batches")
		return
	}
	c.JSON(http.StatusOK, res)
}

// getBatch godoc
// @Summary Get one reconciliation run
// @Tags batches
// @Produce json
// @Param batchNumber path int true "Batch number"
// @Success 200 {object} domain.ReconciliationBatch
// @Failure 400 {object} map[string]string "Invalid batch number"
// @Failure 404 {object} map[string]string "Batch not found"
// @Security BearerAuth
// @Router /reconciliation/batches/{batchNumber} [get]
func (h *batchHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchNumber, err := strconv.ParseInt(c.Param("batchNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch number"})
		return
	}

	batch, err := h.batchService.GetBatch(c.Request.Context(), batchNumber)
	if err != nil {
		respondError(c, logger.With(slog.Int64("batch_number", batchNumber)), err, "Failed to load batch")
		return
	}
	c.JSON(http.StatusOK, batch)
}

// listStatusHistory godoc
// @Summary Get the status audit trail of a transaction
// @Tags batches
// @Produce json
// @Param side path string true "BANK or GOAL"
// @Param transactionRef path string true "Bank transaction id or goal transaction code"
// @Success 200 {object} dto.StatusHistoryResponse
// @Failure 400 {object} map[string]string "Invalid side"
// @Security BearerAuth
// @Router /reconciliation/history/{side}/{transactionRef} [get]
func (h *batchHandler) listStatusHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	res, err := h.batchService.ListStatusHistory(c.Request.Context(), c.Param("side"), c.Param("transactionRef"))
	if err != nil {
		respondError(c, logger, err, "Failed to load status history")
		return
	}
	c.JSON(http.StatusOK, res)
}
