package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/models"
)

// ToModelBatch converts a domain ReconciliationBatch, encoding its error list as JSON.
func ToModelBatch(d domain.ReconciliationBatch) (models.ReconciliationBatch, error) {
	errs := d.Errors
	if errs == nil {
		errs = []domain.BatchError{}
	}
	raw, err := json.Marshal(errs)
	if err != nil {
		return models.ReconciliationBatch{}, fmt.Errorf("failed to encode batch errors: %w", err)
	}
	return models.ReconciliationBatch{
		BatchID:           d.BatchID,
		BatchNumber:       d.BatchNumber,
		Kind:              string(d.Kind),
		ProcessingStatus:  string(d.ProcessingStatus),
		TotalRecords:      d.TotalRecords,
		ProcessedRecords:  d.ProcessedRecords,
		TotalMatched:      d.TotalMatched,
		TotalUnmatched:    d.TotalUnmatched,
		AutoApprovedCount: d.AutoApprovedCount,
		ManualReviewCount: d.ManualReviewCount,
		Errors:            raw,
		UploadedBy:        d.UploadedBy,
		UploadedAt:        d.UploadedAt,
		CompletedAt:       d.CompletedAt,
	}, nil
}

// ToDomainBatch converts a reconciliation_batches row.
func ToDomainBatch(m models.ReconciliationBatch) (domain.ReconciliationBatch, error) {
	errs := []domain.BatchError{}
	if len(m.Errors) > 0 {
		if err := json.Unmarshal(m.Errors, &errs); err != nil {
			return domain.ReconciliationBatch{}, fmt.Errorf("failed to decode errors of batch %d: %w", m.BatchNumber, err)
		}
	}
	return domain.ReconciliationBatch{
		BatchID:          m.BatchID,
		BatchNumber:      m.BatchNumber,
		Kind:             domain.BatchKind(m.Kind),
		ProcessingStatus: domain.ProcessingStatus(m.ProcessingStatus),
		BatchCounts: domain.BatchCounts{
			TotalRecords:      m.TotalRecords,
			ProcessedRecords:  m.ProcessedRecords,
			TotalMatched:      m.TotalMatched,
			TotalUnmatched:    m.TotalUnmatched,
			AutoApprovedCount: m.AutoApprovedCount,
			ManualReviewCount: m.ManualReviewCount,
		},
		Errors:      errs,
		UploadedBy:  m.UploadedBy,
		UploadedAt:  m.UploadedAt,
		CompletedAt: m.CompletedAt,
	}, nil
}
