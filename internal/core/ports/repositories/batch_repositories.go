package repositories

import (
	"context"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
)

// BatchReader defines read operations for reconciliation batch history
type BatchReader interface {
	FindBatchByNumber(ctx context.Context, batchNumber int64) (*domain.ReconciliationBatch, error)

	// ListBatches retrieves batches newest first using token-based pagination.
	// It returns the batches, a token for the next page, and an error.
	ListBatches(ctx context.Context, limit int, nextToken *string) ([]domain.ReconciliationBatch, *string, error)
}

// BatchWriter defines write operations for reconciliation batches
type BatchWriter interface {
	// CreateBatch inserts the batch and fills in its storage-assigned BatchNumber.
	CreateBatch(ctx context.Context, batch *domain.ReconciliationBatch) error

	// UpdateBatch stores status, counts and errors. Batches already COMPLETED or FAILED are not modified.
	UpdateBatch(ctx context.Context, batch domain.ReconciliationBatch) error
}

// BatchRepositoryFacade combines batch read and write operations
type BatchRepositoryFacade interface {
	BatchReader
	BatchWriter
}
