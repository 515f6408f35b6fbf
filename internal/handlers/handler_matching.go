package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/SscSPs/fund_reconciliation/internal/middleware"
	"github.com/gin-gonic/gin"
)

// matchingHandler serves the batch runners and the per-goal matching view.
type matchingHandler struct {
	matchingService portssvc.MatchingSvcFacade
}

func newMatchingHandler(ms portssvc.MatchingSvcFacade) *matchingHandler {
	return &matchingHandler{matchingService: ms}
}

func registerMatchingRoutes(rg *gin.RouterGroup, ms portssvc.MatchingSvcFacade, limit gin.HandlerFunc) {
	h := newMatchingHandler(ms)

	rg.POST("/matching/run", limit, h.runMatching)
	rg.POST("/bank/run", limit, h.runBankReconciliation)
	rg.GET("/goals/:goalNumber/transactions", h.getTransactionsWithMatching)
}

// runMatching godoc
// @Summary Run smart matching over one window of goals
// @Description Matches bank and goal transactions goal by goal. Call again with nextOffset while hasMore is true.
// @Tags matching
// @Accept json
// @Produce json
// @Param request body dto.RunMatchingRequest true "Date range, goal filter and window"
// @Success 200 {object} dto.SmartMatchingResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Matching run failed"
// @Security BearerAuth
// @Router /reconciliation/matching/run [post]
func (h *matchingHandler) runMatching(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RunMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RunMatching", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	result, err := h.matchingService.RunMatching(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Matching run failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// runBankReconciliation godoc
// @Summary Reconcile pending bank transactions
// @Description Runs the matcher for the goals of the oldest PENDING bank transactions, or of the given ids.
// @Tags matching
// @Accept json
// @Produce json
// @Param request body dto.BankReconciliationRequest false "Optional ids and batch size"
// @Success 200 {object} dto.BankReconciliationResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Bank reconciliation failed"
// @Security BearerAuth
// @Router /reconciliation/bank/run [post]
func (h *matchingHandler) runBankReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BankReconciliationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RunBankReconciliation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	result, err := h.matchingService.RunBankReconciliation(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Bank reconciliation failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// getTransactionsWithMatching godoc
// @Summary Get a goal's transactions with match info
// @Tags matching
// @Produce json
// @Param goalNumber path string true "Goal number"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.GoalTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to load goal transactions"
// @Security BearerAuth
// @Router /reconciliation/goals/{goalNumber}/transactions [get]
func (h *matchingHandler) getTransactionsWithMatching(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	goalNumber := c.Param("goalNumber")

	var q dto.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind query for GetTransactionsWithMatching", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	dateRange, err := dto.ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		respondError(c, logger, err, "Failed to load goal transactions")
		return
	}

	res, err := h.matchingService.GetTransactionsWithMatching(c.Request.Context(), goalNumber, dateRange)
	if err != nil {
		respondError(c, logger.With(slog.String("goal_number", goalNumber)), err, "Failed to load goal transactions")
		return
	}
	c.JSON(http.StatusOK, res)
}
