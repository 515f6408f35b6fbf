package repositories

import (
	"context"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
)

// BankTransactionReader defines read operations for bank ledger data
type BankTransactionReader interface {
	// FindBankTransactionByID retrieves a bank transaction with its match info.
	FindBankTransactionByID(ctx context.Context, id string) (*domain.BankTransaction, error)

	// FindBankTransactionsByIDs retrieves the given bank transactions. Missing ids are simply absent from the result.
	FindBankTransactionsByIDs(ctx context.Context, ids []string) ([]domain.BankTransaction, error)

	// ListBankTransactionsByGoal retrieves every bank transaction of a goal in the date range, ordered by id.
	ListBankTransactionsByGoal(ctx context.Context, goalNumber string, dateRange domain.DateRange) ([]domain.BankTransaction, error)

	// ListPendingBankTransactions retrieves PENDING bank transactions ordered by date then id.
	// When ids is non-empty only those are considered; otherwise at most limit rows are returned.
	ListPendingBankTransactions(ctx context.Context, ids []string, limit int) ([]domain.BankTransaction, error)

	// CountPendingBankTransactions counts bank transactions still in PENDING.
	CountPendingBankTransactions(ctx context.Context) (int, error)
}

// GoalTransactionReader defines read operations for fund/goal ledger data
type GoalTransactionReader interface {
	FindGoalTransactionByCode(ctx context.Context, code string) (*domain.GoalTransaction, error)
	FindGoalTransactionsByCodes(ctx context.Context, codes []string) ([]domain.GoalTransaction, error)
	ListGoalTransactionsByGoal(ctx context.Context, goalNumber string, dateRange domain.DateRange) ([]domain.GoalTransaction, error)
}

// GoalReader enumerates goals for batch runs.
type GoalReader interface {
	// ListGoalNumbers returns one page of goal numbers that have any transaction matching the filter,
	// in ascending order, together with the total number of such goals.
	ListGoalNumbers(ctx context.Context, filter domain.GoalFilter, offset, limit int) ([]string, int, error)
}

// MatchWriter persists match groups and their status changes.
type MatchWriter interface {
	// SaveGoalOutcome commits all matches and status changes of one goal atomically.
	// It returns apperrors.ErrConcurrencyConflict when the goal is locked elsewhere or a row moved underneath it.
	SaveGoalOutcome(ctx context.Context, outcome domain.GoalOutcome) error

	// SaveManualMatch writes a reviewer-created match group.
	SaveManualMatch(ctx context.Context, match domain.MatchInfo, changes []domain.StatusChange) error

	// RemoveMatches detaches every member of the given groups and deletes the groups.
	RemoveMatches(ctx context.Context, matchIDs []string, changes []domain.StatusChange) error
}

// ReviewWriter persists review tags.
type ReviewWriter interface {
	// SaveReviews writes all tag updates and status changes in one transaction.
	SaveReviews(ctx context.Context, updates []domain.ReviewUpdate, changes []domain.StatusChange) error
}

// ReversalReader defines read operations for reversal pairs
type ReversalReader interface {
	FindReversalPairByTransaction(ctx context.Context, bankID string) (*domain.ReversalPair, error)
}

// ReversalWriter defines write operations for reversal pairs
type ReversalWriter interface {
	SaveReversalPair(ctx context.Context, pair domain.ReversalPair, changes []domain.StatusChange) error
	DeleteReversalPair(ctx context.Context, pairID string, changes []domain.StatusChange) error
}

// AuditReader exposes the status change history.
type AuditReader interface {
	ListStatusChanges(ctx context.Context, side domain.Side, transactionRef string) ([]domain.StatusChange, error)
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces
type ReconciliationRepositoryFacade interface {
	BankTransactionReader
	GoalTransactionReader
	GoalReader
	MatchWriter
	ReviewWriter
	ReversalReader
	ReversalWriter
	AuditReader
}

// ReconciliationRepositoryWithTx extends ReconciliationRepositoryFacade with transaction capabilities
type ReconciliationRepositoryWithTx interface {
	ReconciliationRepositoryFacade
	TransactionManager
}
