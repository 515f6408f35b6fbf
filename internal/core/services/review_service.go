package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

var (
	ErrNothingToReview = errors.New("at least one transaction id is required")
	ErrTerminalStatus  = errors.New("transaction is already approved or rejected")
)

// reviewService implements the human tagging and resolution workflow.
type reviewService struct {
	BaseService
	repo portsrepo.ReconciliationRepositoryWithTx
}

// NewReviewService creates a new review service.
func NewReviewService(repo portsrepo.ReconciliationRepositoryWithTx, now func() time.Time) portssvc.ReviewSvcFacade {
	return &reviewService{BaseService: BaseService{Now: now}, repo: repo}
}

var _ portssvc.ReviewSvcFacade = (*reviewService)(nil)

// currentStatus loads the status of one transaction on either ledger.
func currentStatus(ctx context.Context, repo portsrepo.ReconciliationRepositoryFacade, side domain.Side, ref string) (domain.ReconciliationStatus, error) {
	switch side {
	case domain.SideBank:
		b, err := repo.FindBankTransactionByID(ctx, ref)
		if err != nil {
			return "", err
		}
		return b.ReconciliationStatus, nil
	case domain.SideGoal:
		g, err := repo.FindGoalTransactionByCode(ctx, ref)
		if err != nil {
			return "", err
		}
		return g.ReconciliationStatus, nil
	}
	return "", fmt.Errorf("%w: unknown transaction side %q", apperrors.ErrValidation, side)
}

func terminalError(side domain.Side, ref string, status domain.ReconciliationStatus) error {
	return fmt.Errorf("%w: %w: %s %s is %s", apperrors.ErrInvalidTransition, ErrTerminalStatus, side, ref, status)
}

// reviewChange returns the status change implied by tagging, if any.
func reviewChange(cs *changeSet, side domain.Side, ref string, status domain.ReconciliationStatus, tag domain.ReviewTag) error {
	if !tag.FlagsForManualReview() {
		return nil
	}
	return cs.add(side, ref, status, domain.StatusManualReview, "flagged "+string(tag))
}

// ReviewTransaction implements portssvc.ReviewSvcFacade
func (s *reviewService) ReviewTransaction(ctx context.Context, req dto.ReviewTransactionRequest, reviewer string) error {
	if err := requireActor(reviewer); err != nil {
		return err
	}
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return err
	}
	tag, err := domain.ParseReviewTag(req.Tag)
	if err != nil {
		return err
	}
	ref := strings.TrimSpace(req.TransactionID)
	if ref == "" {
		return fmt.Errorf("%w: transaction id is required", apperrors.ErrValidation)
	}

	status, err := currentStatus(ctx, s.repo, side, ref)
	if err != nil {
		return err
	}
	if status.IsTerminal() {
		return terminalError(side, ref, status)
	}

	at := s.now()
	cs := newChangeSet(reviewer, at)
	if err := reviewChange(cs, side, ref, status, tag); err != nil {
		return err
	}
	update := domain.ReviewUpdate{Side: side, TransactionRef: ref, Tag: tag, Notes: req.Notes, ReviewedBy: reviewer, ReviewedAt: at}
	if err := s.repo.SaveReviews(ctx, []domain.ReviewUpdate{update}, cs.changes); err != nil {
		s.LogError(ctx, err, "Failed to save review", slog.String("side", string(side)), slog.String("transaction_ref", ref))
		return fmt.Errorf("failed to save review: %w", err)
	}

	s.LogInfo(ctx, "Transaction reviewed",
		slog.String("side", string(side)),
		slog.String("transaction_ref", ref),
		slog.String("tag", string(tag)),
		slog.String("reviewer", reviewer),
	)
	return nil
}

// BulkReview implements portssvc.ReviewSvcFacade. Every id is loaded and
// checked before anything is written.
func (s *reviewService) BulkReview(ctx context.Context, req dto.BulkReviewRequest, reviewer string) (*dto.BulkReviewResponse, error) {
	if err := requireActor(reviewer); err != nil {
		return nil, err
	}
	tag, err := domain.ParseReviewTag(req.Tag)
	if err != nil {
		return nil, err
	}
	bankIDs := uniqueIDs(req.BankIDs)
	goalCodes := uniqueIDs(req.GoalTxnCodes)
	if len(bankIDs) == 0 && len(goalCodes) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNothingToReview)
	}

	at := s.now()
	cs := newChangeSet(reviewer, at)
	updates := make([]domain.ReviewUpdate, 0, len(bankIDs)+len(goalCodes))
	stage := func(side domain.Side, ref string, status domain.ReconciliationStatus) error {
		if status.IsTerminal() {
			return terminalError(side, ref, status)
		}
		if err := reviewChange(cs, side, ref, status, tag); err != nil {
			return err
		}
		updates = append(updates, domain.ReviewUpdate{Side: side, TransactionRef: ref, Tag: tag, Notes: req.Notes, ReviewedBy: reviewer, ReviewedAt: at})
		return nil
	}

	if len(bankIDs) > 0 {
		bank, err := s.repo.FindBankTransactionsByIDs(ctx, bankIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load bank transactions: %w", err)
		}
		found := make(map[string]bool, len(bank))
		for _, b := range bank {
			found[b.ID] = true
		}
		if missing := missingIDs(bankIDs, found); len(missing) > 0 {
			return nil, fmt.Errorf("%w: bank transactions %s", apperrors.ErrNotFound, strings.Join(missing, ", "))
		}
		for _, b := range bank {
			if err := stage(domain.SideBank, b.ID, b.ReconciliationStatus); err != nil {
				return nil, err
			}
		}
	}
	if len(goalCodes) > 0 {
		goalTxns, err := s.repo.FindGoalTransactionsByCodes(ctx, goalCodes)
		if err != nil {
			return nil, fmt.Errorf("failed to load goal transactions: %w", err)
		}
		found := make(map[string]bool, len(goalTxns))
		for _, g := range goalTxns {
			found[g.GoalTransactionCode] = true
		}
		if missing := missingIDs(goalCodes, found); len(missing) > 0 {
			return nil, fmt.Errorf("%w: goal transactions %s", apperrors.ErrNotFound, strings.Join(missing, ", "))
		}
		for _, g := range goalTxns {
			if err := stage(domain.SideGoal, g.GoalTransactionCode, g.ReconciliationStatus); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.SaveReviews(ctx, updates, cs.changes); err != nil {
		s.LogError(ctx, err, "Failed to save bulk review", slog.Int("updates", len(updates)))
		return nil, fmt.Errorf("failed to save bulk review: %w", err)
	}

	s.LogInfo(ctx, "Bulk review applied",
		slog.Int("bank", len(bankIDs)),
		slog.Int("goal", len(goalCodes)),
		slog.String("tag", string(tag)),
		slog.String("reviewer", reviewer),
	)
	return &dto.BulkReviewResponse{
		Success:       true,
		UpdatedCounts: dto.UpdatedCounts{Bank: len(bankIDs), Goal: len(goalCodes)},
	}, nil
}

// ResolveTransaction implements portssvc.ReviewSvcFacade
func (s *reviewService) ResolveTransaction(ctx context.Context, req dto.ResolveTransactionRequest, reviewer string) (*dto.ResolveTransactionResponse, error) {
	if err := requireActor(reviewer); err != nil {
		return nil, err
	}
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	to, err := domain.ReviewDecision(strings.ToUpper(strings.TrimSpace(req.Decision))).Status()
	if err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(req.TransactionID)
	if ref == "" {
		return nil, fmt.Errorf("%w: transaction id is required", apperrors.ErrValidation)
	}

	from, err := currentStatus(ctx, s.repo, side, ref)
	if err != nil {
		return nil, err
	}
	if from.IsTerminal() {
		return nil, terminalError(side, ref, from)
	}
	reason := "resolved " + string(to)
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		reason = notes
	}
	cs := newChangeSet(reviewer, s.now())
	if err := cs.add(side, ref, from, to, reason); err != nil {
		return nil, err
	}
	if err := s.repo.SaveReviews(ctx, nil, cs.changes); err != nil {
		s.LogError(ctx, err, "Failed to resolve transaction", slog.String("transaction_ref", ref))
		return nil, fmt.Errorf("failed to resolve transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction resolved",
		slog.String("side", string(side)),
		slog.String("transaction_ref", ref),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("actor", reviewer),
	)
	return &dto.ResolveTransactionResponse{TransactionID: ref, Side: string(side), From: string(from), To: string(to)}, nil
}
