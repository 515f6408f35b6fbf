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

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

var (
	ErrSameTransaction = errors.New("a transaction cannot reverse itself")
	ErrNotReversal     = errors.New("transactions do not offset each other")
	ErrSourceResolved  = errors.New("source transaction is already resolved")
)

// reversalService links bank transactions that net to zero.
type reversalService struct {
	BaseService
	repo       portsrepo.ReconciliationRepositoryWithTx
	windowDays int
}

// NewReversalService creates a new reversal service. windowDays bounds the
// candidate search when the caller gives no date range.
func NewReversalService(repo portsrepo.ReconciliationRepositoryWithTx, windowDays int, now func() time.Time) portssvc.ReversalSvcFacade {
	return &reversalService{BaseService: BaseService{Now: now}, repo: repo, windowDays: windowDays}
}

var _ portssvc.ReversalSvcFacade = (*reversalService)(nil)

// FindReversalCandidates implements portssvc.ReversalReaderSvc
func (s *reversalService) FindReversalCandidates(ctx context.Context, transactionID string, dateRange *domain.DateRange) (*dto.ReversalCandidatesResponse, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", apperrors.ErrValidation)
	}
	source, err := s.repo.FindBankTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !source.IsUnresolved() {
		return nil, fmt.Errorf("%w: %w: %s is %s", apperrors.ErrValidation, ErrSourceResolved, source.ID, source.ReconciliationStatus)
	}

	var searchRange domain.DateRange
	if dateRange != nil {
		if !dateRange.Validate() {
			return nil, fmt.Errorf("%w: startDate must not be after endDate", apperrors.ErrValidation)
		}
		searchRange = *dateRange
	} else {
		day := domain.CalendarDay(source.TransactionDate)
		start := day.AddDate(0, 0, -s.windowDays)
		end := day.AddDate(0, 0, s.windowDays)
		searchRange = domain.DateRange{Start: &start, End: &end}
	}

	siblings, err := s.repo.ListBankTransactionsByGoal(ctx, source.GoalNumber, searchRange)
	if err != nil {
		s.LogError(ctx, err, "Failed to list reversal candidates", slog.String("transaction_id", source.ID))
		return nil, fmt.Errorf("failed to list reversal candidates: %w", err)
	}

	candidates := make([]dto.ReversalCandidate, 0)
	for _, c := range siblings {
		if !c.IsUnresolved() || !domain.IsReversalOf(*source, c) {
			continue
		}
		candidates = append(candidates, dto.ReversalCandidate{
			Transaction: c,
			DaysApart:   domain.DaysBetween(source.TransactionDate, c.TransactionDate),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DaysApart != candidates[j].DaysApart {
			return candidates[i].DaysApart < candidates[j].DaysApart
		}
		return candidates[i].Transaction.ID < candidates[j].Transaction.ID
	})

	return &dto.ReversalCandidatesResponse{SourceTransaction: *source, Candidates: candidates}, nil
}

func checkLinkable(b *domain.BankTransaction) error {
	if b.ReconciliationStatus.IsTerminal() {
		return terminalError(domain.SideBank, b.ID, b.ReconciliationStatus)
	}
	if b.MatchInfo != nil || b.ReversalPairID != nil {
		return fmt.Errorf("%w: %w: bank %s", apperrors.ErrInvalidTransition, ErrAlreadyMatched, b.ID)
	}
	return nil
}

// LinkReversal implements portssvc.ReversalWriterSvc
func (s *reversalService) LinkReversal(ctx context.Context, firstID, secondID, linkedBy string) (*domain.ReversalPair, error) {
	if err := requireActor(linkedBy); err != nil {
		return nil, err
	}
	firstID, secondID = strings.TrimSpace(firstID), strings.TrimSpace(secondID)
	if firstID == "" || secondID == "" {
		return nil, fmt.Errorf("%w: both transaction ids are required", apperrors.ErrValidation)
	}
	if firstID == secondID {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrSameTransaction)
	}

	first, err := s.repo.FindBankTransactionByID(ctx, firstID)
	if err != nil {
		return nil, err
	}
	second, err := s.repo.FindBankTransactionByID(ctx, secondID)
	if err != nil {
		return nil, err
	}
	if first.GoalNumber != second.GoalNumber {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrMixedGoals)
	}
	if err := checkLinkable(first); err != nil {
		return nil, err
	}
	if err := checkLinkable(second); err != nil {
		return nil, err
	}
	if !domain.IsReversalOf(*first, *second) {
		return nil, fmt.Errorf("%w: %w: %s and %s", apperrors.ErrValidation, ErrNotReversal, firstID, secondID)
	}

	at := s.now()
	pair := domain.ReversalPair{
		PairID:               uuid.NewString(),
		GoalNumber:           first.GoalNumber,
		FirstBankID:          first.ID,
		SecondBankID:         second.ID,
		FirstPreviousStatus:  first.ReconciliationStatus,
		SecondPreviousStatus: second.ReconciliationStatus,
		LinkedBy:             linkedBy,
		LinkedAt:             at,
	}
	cs := newChangeSet(linkedBy, at)
	reason := "reversal pair " + pair.PairID
	if err := cs.add(domain.SideBank, first.ID, first.ReconciliationStatus, domain.StatusAutoApproved, reason); err != nil {
		return nil, err
	}
	if err := cs.add(domain.SideBank, second.ID, second.ReconciliationStatus, domain.StatusAutoApproved, reason); err != nil {
		return nil, err
	}

	if err := s.repo.SaveReversalPair(ctx, pair, cs.changes); err != nil {
		s.LogError(ctx, err, "Failed to save reversal pair", slog.String("first_id", firstID), slog.String("second_id", secondID))
		return nil, fmt.Errorf("failed to save reversal pair: %w", err)
	}

	s.LogInfo(ctx, "Reversal linked",
		slog.String("pair_id", pair.PairID),
		slog.String("goal_number", pair.GoalNumber),
		slog.String("first_id", firstID),
		slog.String("second_id", secondID),
		slog.String("actor", linkedBy),
	)
	return &pair, nil
}

// UnlinkReversal implements portssvc.ReversalWriterSvc
func (s *reversalService) UnlinkReversal(ctx context.Context, transactionID, actor string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	pair, err := s.repo.FindReversalPairByTransaction(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return err
	}

	members, err := s.repo.FindBankTransactionsByIDs(ctx, []string{pair.FirstBankID, pair.SecondBankID})
	if err != nil {
		return fmt.Errorf("failed to load reversal pair members: %w", err)
	}
	cs := newChangeSet(actor, s.now())
	reason := "reversal pair " + pair.PairID + " unlinked"
	for _, m := range members {
		if err := cs.add(domain.SideBank, m.ID, m.ReconciliationStatus, pair.PreviousStatusOf(m.ID), reason); err != nil {
			return err
		}
	}

	if err := s.repo.DeleteReversalPair(ctx, pair.PairID, cs.changes); err != nil {
		s.LogError(ctx, err, "Failed to delete reversal pair", slog.String("pair_id", pair.PairID))
		return fmt.Errorf("failed to delete reversal pair: %w", err)
	}

	s.LogInfo(ctx, "Reversal unlinked", slog.String("pair_id", pair.PairID), slog.String("actor", actor))
	return nil
}

// GetReversalPairInfo implements portssvc.ReversalReaderSvc
func (s *reversalService) GetReversalPairInfo(ctx context.Context, transactionID string) (*dto.ReversalPairInfo, error) {
	transactionID = strings.TrimSpace(transactionID)
	pair, err := s.repo.FindReversalPairByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	txn, err := s.repo.FindBankTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	partner, err := s.repo.FindBankTransactionByID(ctx, pair.PartnerOf(transactionID))
	if err != nil {
		return nil, err
	}
	return &dto.ReversalPairInfo{
		PairID:      pair.PairID,
		Transaction: *txn,
		Partner:     *partner,
		LinkedBy:    pair.LinkedBy,
		LinkedAt:    pair.LinkedAt,
	}, nil
}
