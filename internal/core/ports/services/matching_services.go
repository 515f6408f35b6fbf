package services

import (
	"context"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

// MatchingReaderSvc defines read operations over matched ledgers
type MatchingReaderSvc interface {
	// GetTransactionsWithMatching returns both ledgers of a goal with match info and a summary.
	GetTransactionsWithMatching(ctx context.Context, goalNumber string, dateRange domain.DateRange) (*dto.GoalTransactionsResponse, error)
}

// MatchingRunnerSvc defines the batch matching runners
type MatchingRunnerSvc interface {
	// RunMatching matches one window of goals. Per-goal failures are reported in the result, not as an error.
	RunMatching(ctx context.Context, req dto.RunMatchingRequest, actor string) (*dto.SmartMatchingResult, error)

	// RunBankReconciliation matches PENDING bank transactions against their goals.
	RunBankReconciliation(ctx context.Context, req dto.BankReconciliationRequest, actor string) (*dto.BankReconciliationResult, error)
}

// MatchingSvcFacade combines matching read and run operations
type MatchingSvcFacade interface {
	MatchingReaderSvc
	MatchingRunnerSvc
}
