package services

import (
	"context"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

// BatchSvcFacade exposes run history and the status audit trail
type BatchSvcFacade interface {
	GetBatch(ctx context.Context, batchNumber int64) (*domain.ReconciliationBatch, error)
	ListBatches(ctx context.Context, params dto.ListBatchesParams) (*dto.ListBatchesResponse, error)
	ListStatusHistory(ctx context.Context, side, transactionRef string) (*dto.StatusHistoryResponse, error)
}
