package services_test

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
)

// MockReconciliationRepository is a mock type for portsrepo.ReconciliationRepositoryWithTx
type MockReconciliationRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepositoryWithTx = (*MockReconciliationRepository)(nil)

func (m *MockReconciliationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockReconciliationRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockReconciliationRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockReconciliationRepository) FindBankTransactionByID(ctx context.Context, id string) (*domain.BankTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) FindBankTransactionsByIDs(ctx context.Context, ids []string) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) ListBankTransactionsByGoal(ctx context.Context, goalNumber string, dateRange domain.DateRange) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, goalNumber, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) ListPendingBankTransactions(ctx context.Context, ids []string, limit int) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, ids, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) CountPendingBankTransactions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockReconciliationRepository) FindGoalTransactionByCode(ctx context.Context, code string) (*domain.GoalTransaction, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoalTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) FindGoalTransactionsByCodes(ctx context.Context, codes []string) ([]domain.GoalTransaction, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GoalTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) ListGoalTransactionsByGoal(ctx context.Context, goalNumber string, dateRange domain.DateRange) ([]domain.GoalTransaction, error) {
	args := m.Called(ctx, goalNumber, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GoalTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) ListGoalNumbers(ctx context.Context, filter domain.GoalFilter, offset, limit int) ([]string, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Int(1), args.Error(2)
}

func (m *MockReconciliationRepository) SaveGoalOutcome(ctx context.Context, outcome domain.GoalOutcome) error {
	return m.Called(ctx, outcome).Error(0)
}

func (m *MockReconciliationRepository) SaveManualMatch(ctx context.Context, match domain.MatchInfo, changes []domain.StatusChange) error {
	return m.Called(ctx, match, changes).Error(0)
}

func (m *MockReconciliationRepository) RemoveMatches(ctx context.Context, matchIDs []string, changes []domain.StatusChange) error {
	return m.Called(ctx, matchIDs, changes).Error(0)
}

func (m *MockReconciliationRepository) SaveReviews(ctx context.Context, updates []domain.ReviewUpdate, changes []domain.StatusChange) error {
	return m.Called(ctx, updates, changes).Error(0)
}

func (m *MockReconciliationRepository) FindReversalPairByTransaction(ctx context.Context, bankID string) (*domain.ReversalPair, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReversalPair), args.Error(1)
}

func (m *MockReconciliationRepository) SaveReversalPair(ctx context.Context, pair domain.ReversalPair, changes []domain.StatusChange) error {
	return m.Called(ctx, pair, changes).Error(0)
}

func (m *MockReconciliationRepository) DeleteReversalPair(ctx context.Context, pairID string, changes []domain.StatusChange) error {
	return m.Called(ctx, pairID, changes).Error(0)
}

func (m *MockReconciliationRepository) ListStatusChanges(ctx context.Context, side domain.Side, transactionRef string) ([]domain.StatusChange, error) {
	args := m.Called(ctx, side, transactionRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusChange), args.Error(1)
}

// MockBatchRepository is a mock type for portsrepo.BatchRepositoryFacade.
// CreateBatch assigns increasing batch numbers like the database sequence does.
type MockBatchRepository struct {
	mock.Mock
	next int64
}

var _ portsrepo.BatchRepositoryFacade = (*MockBatchRepository)(nil)

func (m *MockBatchRepository) FindBatchByNumber(ctx context.Context, batchNumber int64) (*domain.ReconciliationBatch, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationBatch), args.Error(1)
}

func (m *MockBatchRepository) ListBatches(ctx context.Context, limit int, nextToken *string) ([]domain.ReconciliationBatch, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var token *string
	if t := args.Get(1); t != nil {
		token = t.(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.ReconciliationBatch), token, args.Error(2)
}

func (m *MockBatchRepository) CreateBatch(ctx context.Context, batch *domain.ReconciliationBatch) error {
	args := m.Called(ctx, batch)
	if err := args.Error(0); err != nil {
		return err
	}
	m.next++
	batch.BatchNumber = m.next
	return nil
}

func (m *MockBatchRepository) UpdateBatch(ctx context.Context, batch domain.ReconciliationBatch) error {
	return m.Called(ctx, batch).Error(0)
}

// lastBatch returns the most recent batch passed to UpdateBatch.
func (m *MockBatchRepository) lastBatch() domain.ReconciliationBatch {
	var last domain.ReconciliationBatch
	for _, call := range m.Calls {
		if call.Method == "UpdateBatch" {
			last = call.Arguments.Get(1).(domain.ReconciliationBatch)
		}
	}
	return last
}
