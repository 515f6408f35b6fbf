package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/core/matching"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/SscSPs/fund_reconciliation/internal/middleware"
	"github.com/SscSPs/fund_reconciliation/internal/platform/locker"
)

const (
	DefaultBatchSize    = 50
	MaxBatchSize        = 500
	DefaultMatchWorkers = 4

	// RunCompletedEvent is published once per finished batch run.
	RunCompletedEvent = "reconciliation_run_completed"
)

// RunEventSink receives analytics events about finished runs.
type RunEventSink interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}

// matchingService runs the matching engine over goals and persists the outcome.
type matchingService struct {
	BaseService
	repo      portsrepo.ReconciliationRepositoryWithTx
	batchRepo portsrepo.BatchRepositoryFacade
	engine    *matching.Engine
	goalLocks *locker.GoalLocker
	workers   int
	defBatch  int
	maxBatch  int
	events    RunEventSink
}

// MatchingServiceOption configures a matching service.
type MatchingServiceOption func(*matchingService)

// WithMatchWorkers bounds how many goals are matched concurrently.
func WithMatchWorkers(n int) MatchingServiceOption {
	return func(s *matchingService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithBatchSizes sets the default and maximum goals per RunMatching call.
func WithBatchSizes(defaultSize, maxSize int) MatchingServiceOption {
	return func(s *matchingService) {
		if maxSize > 0 {
			s.maxBatch = maxSize
		}
		if defaultSize > 0 {
			s.defBatch = min(defaultSize, s.maxBatch)
		}
	}
}

// WithGoalLocker shares a goal locker between services of the same process.
func WithGoalLocker(l *locker.GoalLocker) MatchingServiceOption {
	return func(s *matchingService) {
		if l != nil {
			s.goalLocks = l
		}
	}
}

// WithRunEvents publishes a RunCompletedEvent after every run.
func WithRunEvents(sink RunEventSink) MatchingServiceOption {
	return func(s *matchingService) {
		s.events = sink
	}
}

// WithMatchingClock overrides the clock used for match and audit timestamps.
func WithMatchingClock(now func() time.Time) MatchingServiceOption {
	return func(s *matchingService) {
		s.Now = now
	}
}

// NewMatchingService creates the batch runners and the per-goal matching view.
func NewMatchingService(repo portsrepo.ReconciliationRepositoryWithTx, batchRepo portsrepo.BatchRepositoryFacade, policy matching.Policy, opts ...MatchingServiceOption) portssvc.MatchingSvcFacade {
	s := &matchingService{
		repo:      repo,
		batchRepo: batchRepo,
		engine:    matching.NewEngine(policy),
		goalLocks: locker.New(),
		workers:   DefaultMatchWorkers,
		defBatch:  DefaultBatchSize,
		maxBatch:  MaxBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.MatchingSvcFacade = (*matchingService)(nil)

// goalLoader fetches the ledgers the engine should see for one goal.
type goalLoader func(ctx context.Context, goalNumber string) ([]domain.BankTransaction, []domain.GoalTransaction, error)

// goalRun is the result of matching and committing one goal.
type goalRun struct {
	goal    string
	bank    []domain.BankTransaction
	loaded  int
	result  matching.Result
	outcome domain.GoalOutcome
	err     error
}

// counts are the batch counters contributed by this goal. Failed goals only
// contribute what they loaded.
func (r goalRun) counts() domain.BatchCounts {
	c := domain.BatchCounts{TotalRecords: r.loaded}
	if r.err != nil {
		return c
	}
	c.ProcessedRecords = r.loaded
	for _, m := range r.result.Matches {
		members := len(m.Info.MatchedBankIDs) + len(m.Info.MatchedGoalTxnIDs)
		c.TotalMatched += members
		switch m.Status {
		case domain.StatusAutoApproved:
			c.AutoApprovedCount += members
		case domain.StatusVarianceDetected:
			c.ManualReviewCount += members
		}
	}
	c.TotalUnmatched = len(r.result.UnmatchedBankIDs) + len(r.result.UnmatchedGoalCodes)
	return c
}

// finalBankStatuses returns the status of every loaded bank transaction after the commit.
func (r goalRun) finalBankStatuses() map[string]domain.ReconciliationStatus {
	final := make(map[string]domain.ReconciliationStatus, len(r.bank))
	for _, b := range r.bank {
		final[b.ID] = b.ReconciliationStatus
	}
	for _, ch := range r.outcome.Changes {
		if ch.Side == domain.SideBank {
			final[ch.TransactionRef] = ch.To
		}
	}
	return final
}

func (s *matchingService) clampBatchSize(n int) int {
	if n <= 0 {
		return s.defBatch
	}
	return min(n, s.maxBatch)
}

// RunMatching implements portssvc.MatchingRunnerSvc
func (s *matchingService) RunMatching(ctx context.Context, req dto.RunMatchingRequest, actor string) (*dto.SmartMatchingResult, error) {
	logger := s.GetLogger(ctx)
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", apperrors.ErrValidation)
	}
	dateRange, err := dto.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	filter := domain.GoalFilter{DateRange: dateRange}
	if req.GoalNumber != nil && strings.TrimSpace(*req.GoalNumber) != "" {
		goal := strings.TrimSpace(*req.GoalNumber)
		filter.GoalNumber = &goal
	}
	batchSize := s.clampBatchSize(req.BatchSize)

	batch, err := s.startBatch(ctx, domain.BatchKindGoalMatching, actor)
	if err != nil {
		return nil, err
	}
	logger = logger.With(slog.Int64("batch_number", batch.BatchNumber))
	ctx = middleware.WithLogger(ctx, logger)

	goals, totalGoals, err := s.repo.ListGoalNumbers(ctx, filter, req.Offset, batchSize)
	if err != nil {
		s.LogError(ctx, err, "Failed to list goals for matching run")
		s.failBatch(ctx, batch, err)
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	s.advance(ctx, batch, domain.BatchProcessing)

	load := func(ctx context.Context, goalNumber string) ([]domain.BankTransaction, []domain.GoalTransaction, error) {
		bank, err := s.repo.ListBankTransactionsByGoal(ctx, goalNumber, dateRange)
		if err != nil {
			return nil, nil, err
		}
		goalTxns, err := s.repo.ListGoalTransactionsByGoal(ctx, goalNumber, dateRange)
		if err != nil {
			return nil, nil, err
		}
		return bank, goalTxns, nil
	}
	runs := s.runGoals(ctx, goals, func(ctx context.Context, goalNumber string) goalRun {
		return s.matchGoal(ctx, goalNumber, load)
	})

	result := &dto.SmartMatchingResult{
		BatchNumber:        batch.BatchNumber,
		TotalGoals:         totalGoals,
		GoalsInBatch:       len(goals),
		SkippedSplitGroups: []matching.SkippedSplitGroup{},
	}
	for _, run := range runs {
		if err := batch.Record(run.counts()); err != nil {
			s.LogError(ctx, err, "Failed to record goal counts", slog.String("goal_number", run.goal))
		}
		if run.err != nil {
			batch.Errors = append(batch.Errors, domain.NewBatchError(run.goal, "", run.err))
			continue
		}
		result.ProcessedGoals++
		result.MatchBreakdown.Add(run.result.Breakdown())
		result.TotalUpdated += len(run.outcome.Changes)
		result.SkippedSplitGroups = append(result.SkippedSplitGroups, run.result.SkippedSplitGroups...)
	}
	if consumed := req.Offset + len(goals); consumed < totalGoals {
		result.HasMore = true
		result.NextOffset = consumed
	}
	result.Errors = batch.Errors

	s.finishBatch(ctx, batch, len(goals) > 0 && result.ProcessedGoals == 0)
	logger.Info("Matching run finished",
		slog.Int("total_goals", totalGoals),
		slog.Int("goals_in_batch", len(goals)),
		slog.Int("processed_goals", result.ProcessedGoals),
		slog.Int("total_updated", result.TotalUpdated),
		slog.Int("errors", len(result.Errors)),
		slog.Bool("has_more", result.HasMore),
	)
	s.publishRun(actor, batch)
	return result, nil
}

// RunBankReconciliation implements portssvc.MatchingRunnerSvc
func (s *matchingService) RunBankReconciliation(ctx context.Context, req dto.BankReconciliationRequest, actor string) (*dto.BankReconciliationResult, error) {
	logger := s.GetLogger(ctx)
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ids := uniqueIDs(req.TransactionIDs)
	batchSize := s.clampBatchSize(req.BatchSize)

	batch, err := s.startBatch(ctx, domain.BatchKindBankReconciliation, actor)
	if err != nil {
		return nil, err
	}
	logger = logger.With(slog.Int64("batch_number", batch.BatchNumber))
	ctx = middleware.WithLogger(ctx, logger)

	pending, err := s.repo.ListPendingBankTransactions(ctx, ids, batchSize)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending bank transactions")
		s.failBatch(ctx, batch, err)
		return nil, fmt.Errorf("failed to list pending bank transactions: %w", err)
	}
	s.advance(ctx, batch, domain.BatchProcessing)

	byGoal := make(map[string][]domain.BankTransaction)
	found := make(map[string]bool, len(pending))
	for _, b := range pending {
		byGoal[b.GoalNumber] = append(byGoal[b.GoalNumber], b)
		found[b.ID] = true
	}
	for _, id := range missingIDs(ids, found) {
		batch.Errors = append(batch.Errors, domain.NewBatchError("", id,
			fmt.Errorf("%w: bank transaction %s is not pending", apperrors.ErrNotFound, id)))
	}
	goals := make([]string, 0, len(byGoal))
	for goal := range byGoal {
		goals = append(goals, goal)
	}
	sort.Strings(goals)

	runs := s.runGoals(ctx, goals, func(ctx context.Context, goalNumber string) goalRun {
		selected := byGoal[goalNumber]
		return s.matchGoal(ctx, goalNumber, func(ctx context.Context, goalNumber string) ([]domain.BankTransaction, []domain.GoalTransaction, error) {
			goalTxns, err := s.repo.ListGoalTransactionsByGoal(ctx, goalNumber, s.windowAround(selected))
			if err != nil {
				return nil, nil, err
			}
			return selected, goalTxns, nil
		})
	})

	result := &dto.BankReconciliationResult{BatchNumber: batch.BatchNumber}
	committed := 0
	for _, run := range runs {
		if err := batch.Record(run.counts()); err != nil {
			s.LogError(ctx, err, "Failed to record goal counts", slog.String("goal_number", run.goal))
		}
		if run.err != nil {
			batch.Errors = append(batch.Errors, domain.NewBatchError(run.goal, "", run.err))
			continue
		}
		committed++
		final := run.finalBankStatuses()
		for _, b := range byGoal[run.goal] {
			result.Processed++
			switch final[b.ID] {
			case domain.StatusMatched:
				result.Matched++
			case domain.StatusAutoApproved:
				result.AutoApproved++
			case domain.StatusVarianceDetected:
				result.ManualReview++
			case domain.StatusMissingInFund:
				result.Unmatched++
			}
		}
	}

	totalPending, err := s.repo.CountPendingBankTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to count remaining pending bank transactions")
		batch.Errors = append(batch.Errors, domain.NewBatchError("", "", err))
	}
	result.TotalPending = totalPending
	result.HasMore = len(ids) == 0 && totalPending > 0
	result.Errors = batch.Errors

	s.finishBatch(ctx, batch, len(goals) > 0 && committed == 0)
	logger.Info("Bank reconciliation run finished",
		slog.Int("processed", result.Processed),
		slog.Int("matched", result.Matched),
		slog.Int("unmatched", result.Unmatched),
		slog.Int("total_pending", result.TotalPending),
		slog.Int("errors", len(result.Errors)),
	)
	s.publishRun(actor, batch)
	return result, nil
}

// runGoals matches goals concurrently, bounded by the worker count. The
// returned slice is in the same order as goals.
func (s *matchingService) runGoals(ctx context.Context, goals []string, fn func(context.Context, string) goalRun) []goalRun {
	runs := make([]goalRun, len(goals))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, goal := range goals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				runs[i] = goalRun{goal: goal, err: err}
				return nil
			}
			runs[i] = fn(ctx, goal)
			return nil
		})
	}
	_ = g.Wait()
	return runs
}

// matchGoal locks one goal, runs the engine over its unresolved transactions
// and commits the outcome atomically.
func (s *matchingService) matchGoal(ctx context.Context, goalNumber string, load goalLoader) goalRun {
	logger := s.GetLogger(ctx).With(slog.String("goal_number", goalNumber))
	ctx = middleware.WithLogger(ctx, logger)
	run := goalRun{goal: goalNumber}

	if !s.goalLocks.TryLock(goalNumber) {
		logger.Warn("Goal is already being matched, skipping")
		run.err = fmt.Errorf("%w: goal %s is already being matched", apperrors.ErrConcurrencyConflict, goalNumber)
		return run
	}
	defer s.goalLocks.Unlock(goalNumber)

	bank, goalTxns, err := load(ctx, goalNumber)
	if err != nil {
		logger.Error("Failed to load goal transactions", slog.String("error", err.Error()))
		run.err = fmt.Errorf("failed to load goal %s: %w", goalNumber, err)
		return run
	}
	run.bank = bank
	s.LogDebug(ctx, "Loaded goal transactions", slog.Int("bank", len(bank)), slog.Int("goal", len(goalTxns)))
	run.loaded = countUnresolved(bank, goalTxns)
	run.result = s.engine.Run(matching.Input{GoalNumber: goalNumber, Bank: bank, Goal: goalTxns})

	outcome, err := s.buildOutcome(run.result, bank, goalTxns)
	if err != nil {
		logger.Error("Matcher produced an invalid transition", slog.String("error", err.Error()))
		run.err = err
		return run
	}
	run.outcome = outcome
	if len(outcome.Matches) == 0 && len(outcome.Changes) == 0 {
		logger.Debug("Nothing to reconcile for goal")
		return run
	}

	if err := s.repo.SaveGoalOutcome(ctx, outcome); err != nil {
		logger.Error("Failed to commit goal outcome", slog.String("error", err.Error()))
		run.err = fmt.Errorf("failed to commit goal %s: %w", goalNumber, err)
		return run
	}
	for _, ch := range outcome.Changes {
		logger.Debug("Status changed",
			slog.String("side", string(ch.Side)),
			slog.String("transaction_ref", ch.TransactionRef),
			slog.String("from", string(ch.From)),
			slog.String("to", string(ch.To)),
			slog.String("actor", ch.Actor),
		)
	}
	logger.Info("Goal reconciled",
		slog.Int("matches", len(outcome.Matches)),
		slog.Int("status_changes", len(outcome.Changes)),
		slog.Int("skipped_split_groups", len(run.result.SkippedSplitGroups)),
	)
	return run
}

// buildOutcome stamps ids on the engine's matches and derives the audited
// status changes. Unmatched bank transactions become MISSING_IN_FUND;
// unmatched goal transactions stay PENDING.
func (s *matchingService) buildOutcome(res matching.Result, bank []domain.BankTransaction, goalTxns []domain.GoalTransaction) (domain.GoalOutcome, error) {
	bankStatus := make(map[string]domain.ReconciliationStatus, len(bank))
	for _, b := range bank {
		bankStatus[b.ID] = b.ReconciliationStatus
	}
	goalStatus := make(map[string]domain.ReconciliationStatus, len(goalTxns))
	for _, g := range goalTxns {
		goalStatus[g.GoalTransactionCode] = g.ReconciliationStatus
	}

	at := s.now()
	cs := newChangeSet(domain.SystemActor, at)
	outcome := domain.GoalOutcome{GoalNumber: res.GoalNumber}
	for _, m := range res.Matches {
		info := m.Info
		info.MatchID = uuid.NewString()
		info.MatchedAt = at
		reason := fmt.Sprintf("%s match %s", info.MatchType, info.MatchID)
		for _, id := range info.MatchedBankIDs {
			if err := cs.add(domain.SideBank, id, bankStatus[id], m.Status, reason); err != nil {
				return domain.GoalOutcome{}, err
			}
		}
		for _, code := range info.MatchedGoalTxnIDs {
			if err := cs.add(domain.SideGoal, code, goalStatus[code], m.Status, reason); err != nil {
				return domain.GoalOutcome{}, err
			}
		}
		outcome.Matches = append(outcome.Matches, info)
	}
	for _, id := range res.UnmatchedBankIDs {
		if err := cs.add(domain.SideBank, id, bankStatus[id], domain.StatusMissingInFund, "no fund counterpart found"); err != nil {
			return domain.GoalOutcome{}, err
		}
	}
	outcome.Changes = cs.changes
	return outcome, nil
}

// windowAround covers the selected transactions plus the matching window on either side.
func (s *matchingService) windowAround(bank []domain.BankTransaction) domain.DateRange {
	if len(bank) == 0 {
		return domain.DateRange{}
	}
	lo, hi := bank[0].TransactionDate, bank[0].TransactionDate
	for _, b := range bank[1:] {
		if b.TransactionDate.Before(lo) {
			lo = b.TransactionDate
		}
		if b.TransactionDate.After(hi) {
			hi = b.TransactionDate
		}
	}
	window := s.engine.Policy().WindowDays
	start := domain.CalendarDay(lo).AddDate(0, 0, -window)
	end := domain.CalendarDay(hi).AddDate(0, 0, window)
	return domain.DateRange{Start: &start, End: &end}
}

func countUnresolved(bank []domain.BankTransaction, goalTxns []domain.GoalTransaction) int {
	n := 0
	for _, b := range bank {
		if b.IsUnresolved() {
			n++
		}
	}
	for _, g := range goalTxns {
		if g.IsUnresolved() {
			n++
		}
	}
	return n
}

// startBatch records a new run and moves it to VALIDATING.
func (s *matchingService) startBatch(ctx context.Context, kind domain.BatchKind, actor string) (*domain.ReconciliationBatch, error) {
	batch := &domain.ReconciliationBatch{
		BatchID:          uuid.NewString(),
		Kind:             kind,
		ProcessingStatus: domain.BatchQueued,
		Errors:           []domain.BatchError{},
		UploadedBy:       actor,
		UploadedAt:       s.now(),
	}
	if err := s.batchRepo.CreateBatch(ctx, batch); err != nil {
		s.LogError(ctx, err, "Failed to create reconciliation batch", slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to create reconciliation batch: %w", err)
	}
	s.advance(ctx, batch, domain.BatchValidating)
	return batch, nil
}

// advance moves the batch and stores it. Storage failures are logged only:
// the goal commits they describe have already happened.
func (s *matchingService) advance(ctx context.Context, batch *domain.ReconciliationBatch, to domain.ProcessingStatus) {
	if err := batch.Advance(to, s.now()); err != nil {
		s.LogError(ctx, err, "Invalid batch status change", slog.String("batch_id", batch.BatchID))
		return
	}
	if err := s.batchRepo.UpdateBatch(ctx, *batch); err != nil {
		s.LogError(ctx, err, "Failed to store batch status", slog.String("batch_id", batch.BatchID), slog.String("status", string(to)))
	}
}

func (s *matchingService) failBatch(ctx context.Context, batch *domain.ReconciliationBatch, cause error) {
	batch.Errors = append(batch.Errors, domain.NewBatchError("", "", cause))
	s.advance(ctx, batch, domain.BatchFailed)
}

func (s *matchingService) finishBatch(ctx context.Context, batch *domain.ReconciliationBatch, failed bool) {
	if failed {
		s.advance(ctx, batch, domain.BatchFailed)
		return
	}
	s.advance(ctx, batch, domain.BatchCompleted)
}

func (s *matchingService) publishRun(actor string, batch *domain.ReconciliationBatch) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(actor, RunCompletedEvent, map[string]any{
		"batch_number":      batch.BatchNumber,
		"kind":              string(batch.Kind),
		"status":            string(batch.ProcessingStatus),
		"total_records":     batch.TotalRecords,
		"processed_records": batch.ProcessedRecords,
		"total_matched":     batch.TotalMatched,
		"errors":            len(batch.Errors),
	})
}
