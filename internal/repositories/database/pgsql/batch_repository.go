package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	"github.com/SscSPs/fund_reconciliation/internal/models"
	"github.com/SscSPs/fund_reconciliation/internal/utils/mapping"
	"github.com/SscSPs/fund_reconciliation/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxBatchRepository stores reconciliation run history in reconciliation_batches.
type PgxBatchRepository struct {
	BaseRepository
}

func newPgxBatchRepository(pool *pgxpool.Pool) portsrepo.BatchRepositoryFacade {
	return &PgxBatchRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BatchRepositoryFacade = (*PgxBatchRepository)(nil)

const batchSelect = `
	SELECT batch_id, batch_number, kind, processing_status,
	       total_records, processed_records, total_matched, total_unmatched,
	       auto_approved_count, manual_review_count, errors,
	       uploaded_by, uploaded_at, completed_at
	FROM reconciliation_batches`

func scanBatch(row pgx.Row) (domain.ReconciliationBatch, error) {
	var m models.ReconciliationBatch
	err := row.Scan(
		&m.BatchID, &m.BatchNumber, &m.Kind, &m.ProcessingStatus,
		&m.TotalRecords, &m.ProcessedRecords, &m.TotalMatched, &m.TotalUnmatched,
		&m.AutoApprovedCount, &m.ManualReviewCount, &m.Errors,
		&m.UploadedBy, &m.UploadedAt, &m.CompletedAt,
	)
	if err != nil {
		return domain.ReconciliationBatch{}, err
	}
	return mapping.ToDomainBatch(m)
}

// CreateBatch implements portsrepo.BatchWriter
func (r *PgxBatchRepository) CreateBatch(ctx context.Context, batch *domain.ReconciliationBatch) error {
	m, err := mapping.ToModelBatch(*batch)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode batch", err)
	}
	query := `
		INSERT INTO reconciliation_batches (
			batch_id, kind, processing_status,
			total_records, processed_records, total_matched, total_unmatched,
			auto_approved_count, manual_review_count, errors,
			uploaded_by, uploaded_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING batch_number`
	err = r.Pool.QueryRow(ctx, query,
		m.BatchID, m.Kind, m.ProcessingStatus,
		m.TotalRecords, m.ProcessedRecords, m.TotalMatched, m.TotalUnmatched,
		m.AutoApprovedCount, m.ManualReviewCount, string(m.Errors),
		m.UploadedBy, m.UploadedAt, m.CompletedAt,
	).Scan(&batch.BatchNumber)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert batch "+m.BatchID, err)
	}
	return nil
}

// UpdateBatch implements portsrepo.BatchWriter
func (r *PgxBatchRepository) UpdateBatch(ctx context.Context, batch domain.ReconciliationBatch) error {
	m, err := mapping.ToModelBatch(batch)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode batch", err)
	}
	query := `
		UPDATE reconciliation_batches
		SET processing_status = $2,
		    total_records = $3, processed_records = $4, total_matched = $5, total_unmatched = $6,
		    auto_approved_count = $7, manual_review_count = $8, errors = $9, completed_at = $10
		WHERE batch_id = $1 AND processing_status NOT IN ('COMPLETED', 'FAILED')`
	tag, err := r.Pool.Exec(ctx, query,
		m.BatchID, m.ProcessingStatus,
		m.TotalRecords, m.ProcessedRecords, m.TotalMatched, m.TotalUnmatched,
		m.AutoApprovedCount, m.ManualReviewCount, string(m.Errors), m.CompletedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update batch "+m.BatchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: batch %s is missing or already final", apperrors.ErrInvalidTransition, m.BatchID)
	}
	return nil
}

// FindBatchByNumber implements portsrepo.BatchReader
func (r *PgxBatchRepository) FindBatchByNumber(ctx context.Context, batchNumber int64) (*domain.ReconciliationBatch, error) {
	b, err := scanBatch(r.Pool.QueryRow(ctx, batchSelect+` WHERE batch_number = $1`, batchNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: batch %d", apperrors.ErrNotFound, batchNumber)
		}
		return nil, apperrors.NewAppError(500, "failed to find batch "+strconv.FormatInt(batchNumber, 10), err)
	}
	return &b, nil
}

// ListBatches implements portsrepo.BatchReader. The token carries the last
// batch number of the previous page.
func (r *PgxBatchRepository) ListBatches(ctx context.Context, limit int, nextToken *string) ([]domain.ReconciliationBatch, *string, error) {
	var before *int64
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		n, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || len(fields) != 1 {
			return nil, nil, fmt.Errorf("%w: invalid batch page token", apperrors.ErrValidation)
		}
		before = &n
	}

	// One extra row tells whether another page exists.
	rows, err := r.Pool.Query(ctx, batchSelect+`
		WHERE ($1::bigint IS NULL OR batch_number < $1::bigint)
		ORDER BY batch_number DESC
		LIMIT $2`, before, limit+1)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list batches", err)
	}
	defer rows.Close()

	batches := make([]domain.ReconciliationBatch, 0, limit)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan batch", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating batches", err)
	}

	var next *string
	if len(batches) > limit {
		batches = batches[:limit]
		token := pagination.EncodeMultiFieldToken(strconv.FormatInt(batches[limit-1].BatchNumber, 10))
		next = &token
	}
	return batches, next, nil
}
