package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

const (
	defaultBatchPageSize = 20
	maxBatchPageSize     = 100
)

type batchService struct {
	BaseService
	batchRepo portsrepo.BatchRepositoryFacade
	auditRepo portsrepo.AuditReader
}

// NewBatchService creates the run-history and audit trail service.
func NewBatchService(batchRepo portsrepo.BatchRepositoryFacade, auditRepo portsrepo.AuditReader) portssvc.BatchSvcFacade {
	return &batchService{batchRepo: batchRepo, auditRepo: auditRepo}
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

// GetBatch implements portssvc.BatchSvcFacade
func (s *batchService) GetBatch(ctx context.Context, batchNumber int64) (*domain.ReconciliationBatch, error) {
	if batchNumber <= 0 {
		return nil, fmt.Errorf("%w: batch number must be positive", apperrors.ErrValidation)
	}
	return s.batchRepo.FindBatchByNumber(ctx, batchNumber)
}

// ListBatches implements portssvc.BatchSvcFacade. The page size defaults to
// defaultBatchPageSize and is capped at maxBatchPageSize.
func (s *batchService) ListBatches(ctx context.Context, params dto.ListBatchesParams) (*dto.ListBatchesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultBatchPageSize
	}
	limit = min(limit, maxBatchPageSize)

	batches, nextToken, err := s.batchRepo.ListBatches(ctx, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list batches", slog.Int("limit", limit))
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	if batches == nil {
		batches = []domain.ReconciliationBatch{}
	}
	return &dto.ListBatchesResponse{Batches: batches, NextToken: nextToken}, nil
}

// ListStatusHistory implements portssvc.BatchSvcFacade
func (s *batchService) ListStatusHistory(ctx context.Context, side, transactionRef string) (*dto.StatusHistoryResponse, error) {
	parsed, err := domain.ParseSide(side)
	if err != nil {
		return nil, err
	}
	transactionRef = strings.TrimSpace(transactionRef)
	if transactionRef == "" {
		return nil, fmt.Errorf("%w: transaction reference is required", apperrors.ErrValidation)
	}
	changes, err := s.auditRepo.ListStatusChanges(ctx, parsed, transactionRef)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	if changes == nil {
		changes = []domain.StatusChange{}
	}
	return &dto.StatusHistoryResponse{Side: parsed, TransactionRef: transactionRef, Changes: changes}, nil
}
