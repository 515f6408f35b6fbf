package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/core/matching"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

var (
	ErrMixedGoals     = errors.New("all transactions must belong to the same goal")
	ErrAlreadyMatched = errors.New("transaction is already matched or paired")
	ErrNotMatched     = errors.New("transaction is not matched")
)

// manualMatchService lets reviewers build and release match groups by hand.
type manualMatchService struct {
	BaseService
	repo      portsrepo.ReconciliationRepositoryWithTx
	tolerance matching.Tolerance
}

// NewManualMatchService creates a new manual match service.
func NewManualMatchService(repo portsrepo.ReconciliationRepositoryWithTx, tolerance matching.Tolerance, now func() time.Time) portssvc.ManualMatchSvcFacade {
	return &manualMatchService{BaseService: BaseService{Now: now}, repo: repo, tolerance: tolerance}
}

var _ portssvc.ManualMatchSvcFacade = (*manualMatchService)(nil)

// manuallyMatchable reports whether a reviewer may put a transaction in status s into a group.
func manuallyMatchable(s domain.ReconciliationStatus) bool {
	return s.IsUnresolved() || s == domain.StatusManualReview || s == domain.StatusVarianceDetected
}

func checkMatchable(side domain.Side, ref string, status domain.ReconciliationStatus, matched bool) error {
	if status.IsTerminal() {
		return terminalError(side, ref, status)
	}
	if matched {
		return fmt.Errorf("%w: %w: %s %s", apperrors.ErrInvalidTransition, ErrAlreadyMatched, side, ref)
	}
	if !manuallyMatchable(status) {
		return fmt.Errorf("%w: %s %s in status %s cannot be matched manually", apperrors.ErrInvalidTransition, side, ref, status)
	}
	return nil
}

// CreateManualMatch implements portssvc.ManualMatchSvcFacade
func (s *manualMatchService) CreateManualMatch(ctx context.Context, req dto.ManualMatchRequest, matchedBy string) (*dto.ManualMatchResponse, error) {
	if err := requireActor(matchedBy); err != nil {
		return nil, err
	}
	bankIDs := uniqueIDs(req.BankIDs)
	goalCodes := uniqueIDs(req.GoalTxnCodes)
	if len(bankIDs) == 0 || len(goalCodes) == 0 {
		return nil, fmt.Errorf("%w: a manual match needs at least one bank and one goal transaction", apperrors.ErrValidation)
	}

	bank, err := s.repo.FindBankTransactionsByIDs(ctx, bankIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank transactions: %w", err)
	}
	goalTxns, err := s.repo.FindGoalTransactionsByCodes(ctx, goalCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to load goal transactions: %w", err)
	}
	if err := requireAll(bankIDs, goalCodes, bank, goalTxns); err != nil {
		return nil, err
	}

	goalNumber := bank[0].GoalNumber
	at := s.now()
	info := domain.MatchInfo{
		MatchID:      uuid.NewString(),
		GoalNumber:   goalNumber,
		MatchType:    domain.MatchManual,
		Confidence:   1.0,
		BankTotal:    decimal.Zero,
		GoalTxnTotal: decimal.Zero,
		MatchedBy:    matchedBy,
		MatchedAt:    at,
	}
	for _, b := range bank {
		if b.GoalNumber != goalNumber {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrMixedGoals)
		}
		if err := checkMatchable(domain.SideBank, b.ID, b.ReconciliationStatus, b.MatchInfo != nil || b.ReversalPairID != nil); err != nil {
			return nil, err
		}
		info.MatchedBankIDs = append(info.MatchedBankIDs, b.ID)
		info.BankTotal = info.BankTotal.Add(b.TotalAmount)
	}
	for _, g := range goalTxns {
		if g.GoalNumber != goalNumber {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrMixedGoals)
		}
		if err := checkMatchable(domain.SideGoal, g.GoalTransactionCode, g.ReconciliationStatus, g.MatchInfo != nil); err != nil {
			return nil, err
		}
		info.MatchedGoalTxnIDs = append(info.MatchedGoalTxnIDs, g.GoalTransactionCode)
		info.GoalTxnTotal = info.GoalTxnTotal.Add(g.TotalAmount)
		for _, b := range bank {
			info.DateDifferenceDays = max(info.DateDifferenceDays, domain.DaysBetween(b.TransactionDate, g.TransactionDate))
		}
	}
	sort.Strings(info.MatchedBankIDs)
	sort.Strings(info.MatchedGoalTxnIDs)
	info.AmountDifference = info.BankTotal.Sub(info.GoalTxnTotal).Abs()

	cs := newChangeSet(matchedBy, at)
	reason := "manual match " + info.MatchID
	for _, b := range bank {
		if err := cs.add(domain.SideBank, b.ID, b.ReconciliationStatus, domain.StatusMatched, reason); err != nil {
			return nil, err
		}
	}
	for _, g := range goalTxns {
		if err := cs.add(domain.SideGoal, g.GoalTransactionCode, g.ReconciliationStatus, domain.StatusMatched, reason); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveManualMatch(ctx, info, cs.changes); err != nil {
		s.LogError(ctx, err, "Failed to save manual match", slog.String("goal_number", goalNumber))
		return nil, fmt.Errorf("failed to save manual match: %w", err)
	}

	withinTolerance := s.tolerance.Within(info.BankTotal, info.GoalTxnTotal)
	s.LogInfo(ctx, "Manual match created",
		slog.String("match_id", info.MatchID),
		slog.String("goal_number", goalNumber),
		slog.Int("bank_count", len(bank)),
		slog.Int("goal_count", len(goalTxns)),
		slog.Bool("within_tolerance", withinTolerance),
		slog.String("actor", matchedBy),
	)
	return &dto.ManualMatchResponse{
		MatchID:          info.MatchID,
		MatchedBankCount: len(bank),
		MatchedGoalCount: len(goalTxns),
		BankTotal:        info.BankTotal,
		GoalTotal:        info.GoalTxnTotal,
		AmountDifference: info.AmountDifference,
		WithinTolerance:  withinTolerance,
	}, nil
}

// RemoveManualMatch implements portssvc.ManualMatchSvcFacade. Whole groups are
// released: every member on both sides goes back to PENDING.
func (s *manualMatchService) RemoveManualMatch(ctx context.Context, req dto.RemoveMatchRequest, actor string) (*dto.RemoveMatchResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bankIDs := uniqueIDs(req.BankIDs)
	if len(bankIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one bank transaction id is required", apperrors.ErrValidation)
	}

	requested, err := s.repo.FindBankTransactionsByIDs(ctx, bankIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank transactions: %w", err)
	}
	if err := requireAll(bankIDs, nil, requested, nil); err != nil {
		return nil, err
	}

	var matchIDs, memberBank, memberGoal []string
	seenMatch := make(map[string]bool)
	for _, b := range requested {
		if b.MatchInfo == nil {
			return nil, fmt.Errorf("%w: %w: bank transaction %s", apperrors.ErrValidation, ErrNotMatched, b.ID)
		}
		if seenMatch[b.MatchInfo.MatchID] {
			continue
		}
		seenMatch[b.MatchInfo.MatchID] = true
		matchIDs = append(matchIDs, b.MatchInfo.MatchID)
		memberBank = append(memberBank, b.MatchInfo.MatchedBankIDs...)
		memberGoal = append(memberGoal, b.MatchInfo.MatchedGoalTxnIDs...)
	}

	bank, err := s.repo.FindBankTransactionsByIDs(ctx, memberBank)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched bank transactions: %w", err)
	}
	goalTxns, err := s.repo.FindGoalTransactionsByCodes(ctx, memberGoal)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched goal transactions: %w", err)
	}

	cs := newChangeSet(actor, s.now())
	reason := "match removed"
	for _, b := range bank {
		if err := cs.add(domain.SideBank, b.ID, b.ReconciliationStatus, domain.StatusPending, reason); err != nil {
			return nil, err
		}
	}
	for _, g := range goalTxns {
		if err := cs.add(domain.SideGoal, g.GoalTransactionCode, g.ReconciliationStatus, domain.StatusPending, reason); err != nil {
			return nil, err
		}
	}

	if err := s.repo.RemoveMatches(ctx, matchIDs, cs.changes); err != nil {
		s.LogError(ctx, err, "Failed to remove matches", slog.String("match_ids", strings.Join(matchIDs, ",")))
		return nil, fmt.Errorf("failed to remove matches: %w", err)
	}

	unmatched := len(bank) + len(goalTxns)
	s.LogInfo(ctx, "Matches removed",
		slog.Int("groups", len(matchIDs)),
		slog.Int("unmatched", unmatched),
		slog.String("actor", actor),
	)
	return &dto.RemoveMatchResponse{Unmatched: unmatched}, nil
}

// requireAll fails with ErrNotFound naming every requested id that was not loaded.
func requireAll(bankIDs, goalCodes []string, bank []domain.BankTransaction, goalTxns []domain.GoalTransaction) error {
	found := make(map[string]bool, len(bank)+len(goalTxns))
	for _, b := range bank {
		found["b:"+b.ID] = true
	}
	for _, g := range goalTxns {
		found["g:"+g.GoalTransactionCode] = true
	}
	var missing []string
	for _, id := range bankIDs {
		if !found["b:"+id] {
			missing = append(missing, "bank "+id)
		}
	}
	for _, code := range goalCodes {
		if !found["g:"+code] {
			missing = append(missing, "goal "+code)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, strings.Join(missing, ", "))
	}
	return nil
}
