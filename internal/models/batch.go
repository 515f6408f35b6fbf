package models

import (
	"encoding/json"
	"time"
)

// ReconciliationBatch is a row of reconciliation_batches.
type ReconciliationBatch struct {
	BatchID           string          `db:"batch_id"`
	BatchNumber       int64           `db:"batch_number"`
	Kind              string          `db:"kind"`
	ProcessingStatus  string          `db:"processing_status"`
	TotalRecords      int             `db:"total_records"`
	ProcessedRecords  int             `db:"processed_records"`
	TotalMatched      int             `db:"total_matched"`
	TotalUnmatched    int             `db:"total_unmatched"`
	AutoApprovedCount int             `db:"auto_approved_count"`
	ManualReviewCount int             `db:"manual_review_count"`
	Errors            json.RawMessage `db:"errors"` // jsonb array
	UploadedBy        string          `db:"uploaded_by"`
	UploadedAt        time.Time       `db:"uploaded_at"`
	CompletedAt       *time.Time      `db:"completed_at"`
}
