package services

import (
	"context"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

// ReversalReaderSvc defines read operations for reversal pairs
type ReversalReaderSvc interface {
	// FindReversalCandidates ranks unresolved bank transactions that could offset the source.
	// A nil dateRange means within the matching window around the source date.
	FindReversalCandidates(ctx context.Context, transactionID string, dateRange *domain.DateRange) (*dto.ReversalCandidatesResponse, error)

	GetReversalPairInfo(ctx context.Context, transactionID string) (*dto.ReversalPairInfo, error)
}

// ReversalWriterSvc defines write operations for reversal pairs
type ReversalWriterSvc interface {
	LinkReversal(ctx context.Context, firstID, secondID, linkedBy string) (*domain.ReversalPair, error)

	// UnlinkReversal deletes the pair containing transactionID and restores both previous statuses.
	UnlinkReversal(ctx context.Context, transactionID, actor string) error
}

// ReversalSvcFacade combines reversal read and write operations
type ReversalSvcFacade interface {
	ReversalReaderSvc
	ReversalWriterSvc
}
