package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
)

// ProcessingStatus tracks a reconciliation batch through its run.
type ProcessingStatus string

const (
	BatchQueued     ProcessingStatus = "QUEUED"
	BatchParsing    ProcessingStatus = "PARSING"
	BatchValidating ProcessingStatus = "VALIDATING"
	BatchProcessing ProcessingStatus = "PROCESSING"
	BatchCompleted  ProcessingStatus = "COMPLETED"
	BatchFailed     ProcessingStatus = "FAILED"
)

// IsFinal reports whether the batch counts are frozen.
func (s ProcessingStatus) IsFinal() bool {
	return s == BatchCompleted || s == BatchFailed
}

var batchTransitions = map[ProcessingStatus][]ProcessingStatus{
	BatchQueued:     {BatchParsing, BatchValidating, BatchFailed},
	BatchParsing:    {BatchValidating, BatchFailed},
	BatchValidating: {BatchProcessing, BatchFailed},
	BatchProcessing: {BatchCompleted, BatchFailed},
}

// BatchKind identifies which runner produced the batch.
type BatchKind string

const (
	BatchKindGoalMatching       BatchKind = "GOAL_MATCHING"
	BatchKindBankReconciliation BatchKind = "BANK_RECONCILIATION"
)

// BatchError is one per-goal or per-transaction failure recorded during a run.
type BatchError struct {
	GoalNumber    string `json:"goalNumber,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

// NewBatchError builds a BatchError classified by apperrors.Kind.
func NewBatchError(goalNumber, transactionID string, err error) BatchError {
	return BatchError{
		GoalNumber:    goalNumber,
		TransactionID: transactionID,
		Code:          apperrors.Kind(err),
		Message:       err.Error(),
	}
}

// BatchCounts are the aggregate counters of a run.
type BatchCounts struct {
	TotalRecords      int `json:"totalRecords"`
	ProcessedRecords  int `json:"processedRecords"`
	TotalMatched      int `json:"totalMatched"`
	TotalUnmatched    int `json:"totalUnmatched"`
	AutoApprovedCount int `json:"autoApprovedCount"`
	ManualReviewCount int `json:"manualReviewCount"`
}

// ReconciliationBatch is one invocation of a batch runner.
type ReconciliationBatch struct {
	BatchID          string           `json:"batchId"`
	BatchNumber      int64            `json:"batchNumber"` // assigned by storage
	Kind             BatchKind        `json:"kind"`
	ProcessingStatus ProcessingStatus `json:"processingStatus"`
	BatchCounts
	Errors      []BatchError `json:"errors"`
	UploadedBy  string       `json:"uploadedBy"`
	UploadedAt  time.Time    `json:"uploadedAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// Advance moves the batch to the next processing status.
func (b *ReconciliationBatch) Advance(to ProcessingStatus, at time.Time) error {
	for _, allowed := range batchTransitions[b.ProcessingStatus] {
		if allowed == to {
			b.ProcessingStatus = to
			if to.IsFinal() {
				b.CompletedAt = &at
			}
			return nil
		}
	}
	return fmt.Errorf("%w: batch %s cannot move from %s to %s", apperrors.ErrInvalidTransition, b.BatchID, b.ProcessingStatus, to)
}

// Record folds a committed goal's counters into the batch, keeping processed <= total.
func (b *ReconciliationBatch) Record(c BatchCounts) error {
	if b.ProcessingStatus.IsFinal() {
		return fmt.Errorf("%w: batch %s is %s and its counts are frozen", apperrors.ErrInvalidTransition, b.BatchID, b.ProcessingStatus)
	}
	b.TotalRecords += c.TotalRecords
	b.ProcessedRecords += c.ProcessedRecords
	if b.ProcessedRecords > b.TotalRecords {
		b.ProcessedRecords = b.TotalRecords
	}
	b.TotalMatched += c.TotalMatched
	b.TotalUnmatched += c.TotalUnmatched
	b.AutoApprovedCount += c.AutoApprovedCount
	b.ManualReviewCount += c.ManualReviewCount
	return nil
}
