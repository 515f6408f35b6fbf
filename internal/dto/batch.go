package dto

import "github.com/SscSPs/fund_reconciliation/internal/core/domain"

// ListBatchesParams defines query parameters for listing batches.
type ListBatchesParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListBatchesResponse is one page of batch history, newest first.
type ListBatchesResponse struct {
	Batches   []domain.ReconciliationBatch `json:"batches"`
	NextToken *string                      `json:"nextToken,omitempty"`
}

// StatusHistoryResponse is the audit trail of one transaction, oldest first.
type StatusHistoryResponse struct {
	Side           domain.Side           `json:"side"`
	TransactionRef string                `json:"transactionRef"`
	Changes        []domain.StatusChange `json:"changes"`
}
