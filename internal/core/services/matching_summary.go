package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/shopspring/decimal"
)

// GetTransactionsWithMatching implements portssvc.MatchingReaderSvc
func (s *matchingService) GetTransactionsWithMatching(ctx context.Context, goalNumber string, dateRange domain.DateRange) (*dto.GoalTransactionsResponse, error) {
	goalNumber = strings.TrimSpace(goalNumber)
	if goalNumber == "" {
		return nil, fmt.Errorf("%w: goal number is required", apperrors.ErrValidation)
	}
	if !dateRange.Validate() {
		return nil, fmt.Errorf("%w: startDate must not be after endDate", apperrors.ErrValidation)
	}

	bank, err := s.repo.ListBankTransactionsByGoal(ctx, goalNumber, dateRange)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bank transactions", slog.String("goal_number", goalNumber))
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	goalTxns, err := s.repo.ListGoalTransactionsByGoal(ctx, goalNumber, dateRange)
	if err != nil {
		s.LogError(ctx, err, "Failed to list goal transactions", slog.String("goal_number", goalNumber))
		return nil, fmt.Errorf("failed to list goal transactions: %w", err)
	}
	if bank == nil {
		bank = []domain.BankTransaction{}
	}
	if goalTxns == nil {
		goalTxns = []domain.GoalTransaction{}
	}

	return &dto.GoalTransactionsResponse{
		GoalNumber:       goalNumber,
		BankTransactions: bank,
		GoalTransactions: goalTxns,
		Summary:          summarize(bank, goalTxns),
	}, nil
}

// needsReview covers the states a reviewer is expected to look at.
func needsReview(status domain.ReconciliationStatus) bool {
	switch status {
	case domain.StatusVarianceDetected, domain.StatusManualReview, domain.StatusMissingInFund:
		return true
	}
	return false
}

func summarize(bank []domain.BankTransaction, goalTxns []domain.GoalTransaction) dto.MatchingSummary {
	sum := dto.MatchingSummary{
		BankCount:    len(bank),
		GoalTxnCount: len(goalTxns),
		BankTotal:    decimal.Zero,
		GoalTxnTotal: decimal.Zero,
	}
	groups := make(map[string]domain.MatchType)
	pairs := make(map[string]bool)

	tally := func(status domain.ReconciliationStatus, review domain.ReviewFields, match *domain.MatchInfo, funds domain.FundBreakdown, total decimal.Decimal) {
		if match != nil {
			groups[match.MatchID] = match.MatchType
		}
		if status == domain.StatusVarianceDetected {
			sum.VarianceCount++
		}
		if review.IsReviewed() {
			sum.ReviewedCount++
		} else if needsReview(status) {
			sum.PendingReviewCount++
		}
		if !funds.Total().IsZero() && !funds.Consistent(total) {
			sum.FundBreakdownMismatches++
		}
	}

	for _, b := range bank {
		sum.BankTotal = sum.BankTotal.Add(b.TotalAmount)
		if b.MatchInfo != nil {
			sum.MatchedBankCount++
		} else {
			sum.UnmatchedBankCount++
		}
		if b.ReversalPairID != nil {
			pairs[*b.ReversalPairID] = true
		}
		tally(b.ReconciliationStatus, b.ReviewFields, b.MatchInfo, b.FundAmounts, b.TotalAmount)
	}
	for _, g := range goalTxns {
		sum.GoalTxnTotal = sum.GoalTxnTotal.Add(g.TotalAmount)
		if g.MatchInfo != nil {
			sum.MatchedGoalTxnCount++
		} else {
			sum.UnmatchedGoalTxnCount++
		}
		tally(g.ReconciliationStatus, g.ReviewFields, g.MatchInfo, g.FundAmounts, g.TotalAmount)
	}

	for _, t := range groups {
		switch {
		case t == domain.MatchExact:
			sum.ExactMatches++
		case t == domain.MatchAmount:
			sum.AmountMatches++
		case t.IsSplit():
			sum.SplitMatches++
		case t == domain.MatchManual:
			sum.ManualMatches++
		}
	}
	sum.ReversalPairs = len(pairs)
	return sum
}
