package services

import (
	"context"

	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

// ReviewSvcFacade defines the human review workflow
type ReviewSvcFacade interface {
	// ReviewTransaction tags a single transaction, overwriting any previous tag.
	ReviewTransaction(ctx context.Context, req dto.ReviewTransactionRequest, reviewer string) error

	// BulkReview tags many transactions atomically.
	BulkReview(ctx context.Context, req dto.BulkReviewRequest, reviewer string) (*dto.BulkReviewResponse, error)

	// ResolveTransaction moves a transaction to APPROVED or REJECTED.
	ResolveTransaction(ctx context.Context, req dto.ResolveTransactionRequest, reviewer string) (*dto.ResolveTransactionResponse, error)
}

// ManualMatchSvcFacade defines reviewer-driven matching
type ManualMatchSvcFacade interface {
	CreateManualMatch(ctx context.Context, req dto.ManualMatchRequest, matchedBy string) (*dto.ManualMatchResponse, error)
	RemoveManualMatch(ctx context.Context, req dto.RemoveMatchRequest, actor string) (*dto.RemoveMatchResponse, error)
}
