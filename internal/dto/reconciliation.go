package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/core/matching"
	"github.com/shopspring/decimal"
)

// RunMatchingRequest is the input of a goal-batched smart matching run.
type RunMatchingRequest struct {
	StartDate  *string `json:"startDate,omitempty" binding:"omitempty,datetime=2006-01-02" example:"2025-01-01"`
	EndDate    *string `json:"endDate,omitempty" binding:"omitempty,datetime=2006-01-02" example:"2025-01-31"`
	GoalNumber *string `json:"goalNumber,omitempty" binding:"omitempty,max=64"`
	BatchSize  int     `json:"batchSize,omitempty" binding:"omitempty,min=1"`
	Offset     int     `json:"offset,omitempty" binding:"omitempty,min=0"`
}

// SmartMatchingResult reports one window of a batch run.
type SmartMatchingResult struct {
	BatchNumber        int64                        `json:"batchNumber"`
	TotalGoals         int                          `json:"totalGoals"`
	ProcessedGoals     int                          `json:"processedGoals"`
	GoalsInBatch       int                          `json:"goalsInBatch"`
	MatchBreakdown     matching.Breakdown           `json:"matchBreakdown"`
	TotalUpdated       int                          `json:"totalUpdated"`
	HasMore            bool                         `json:"hasMore"`
	NextOffset         int                          `json:"nextOffset"`
	Errors             []domain.BatchError          `json:"errors"`
	SkippedSplitGroups []matching.SkippedSplitGroup `json:"skippedSplitGroups"`
}

// BankReconciliationRequest selects PENDING bank transactions for the bank-only runner.
type BankReconciliationRequest struct {
	TransactionIDs []string `json:"transactionIds,omitempty" binding:"omitempty,max=1000,dive,required"`
	BatchSize      int      `json:"batchSize,omitempty" binding:"omitempty,min=1"`
}

// BankReconciliationResult reports one bank-only run. Counts are of bank rows.
type BankReconciliationResult struct {
	BatchNumber  int64               `json:"batchNumber"`
	Processed    int                 `json:"processed"`
	Matched      int                 `json:"matched"`
	Unmatched    int                 `json:"unmatched"`
	AutoApproved int                 `json:"autoApproved"`
	ManualReview int                 `json:"manualReview"`
	Errors       []domain.BatchError `json:"errors"`
	TotalPending int                 `json:"totalPending"`
	HasMore      bool                `json:"hasMore"`
}

// MatchingSummary aggregates one goal's reconciliation state.
type MatchingSummary struct {
	BankCount               int             `json:"bankCount"`
	GoalTxnCount            int             `json:"goalTxnCount"`
	MatchedBankCount        int             `json:"matchedBankCount"`
	UnmatchedBankCount      int             `json:"unmatchedBankCount"`
	MatchedGoalTxnCount     int             `json:"matchedGoalTxnCount"`
	UnmatchedGoalTxnCount   int             `json:"unmatchedGoalTxnCount"`
	ExactMatches            int             `json:"exactMatches"`
	AmountMatches           int             `json:"amountMatches"`
	SplitMatches            int             `json:"splitMatches"`
	ManualMatches           int             `json:"manualMatches"`
	VarianceCount           int             `json:"varianceCount"`
	ReviewedCount           int             `json:"reviewedCount"`
	PendingReviewCount      int             `json:"pendingReviewCount"`
	ReversalPairs           int             `json:"reversalPairs"`
	BankTotal               decimal.Decimal `json:"bankTotal"`
	GoalTxnTotal            decimal.Decimal `json:"goalTxnTotal"`
	FundBreakdownMismatches int             `json:"fundBreakdownMismatches"`
}

// GoalTransactionsResponse is both ledgers of a goal with their match info.
type GoalTransactionsResponse struct {
	GoalNumber       string                   `json:"goalNumber"`
	BankTransactions []domain.BankTransaction `json:"bankTransactions"`
	GoalTransactions []domain.GoalTransaction `json:"goalTransactions"`
	Summary          MatchingSummary          `json:"summary"`
}

// ParseDateRange parses optional YYYY-MM-DD bounds into a validated range.
func ParseDateRange(start, end *string) (domain.DateRange, error) {
	var r domain.DateRange
	parse := func(field string, v *string) (*time.Time, error) {
		if v == nil || *v == "" {
			return nil, nil
		}
		t, err := time.Parse(domain.DateLayout, *v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be formatted as %s", apperrors.ErrValidation, field, domain.DateLayout)
		}
		return &t, nil
	}
	var err error
	if r.Start, err = parse("startDate", start); err != nil {
		return r, err
	}
	if r.End, err = parse("endDate", end); err != nil {
		return r, err
	}
	if !r.Validate() {
		return r, fmt.Errorf("%w: startDate must not be after endDate", apperrors.ErrValidation)
	}
	return r, nil
}

// DateRangeQuery binds optional startDate/endDate query parameters.
type DateRangeQuery struct {
	StartDate *string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}
