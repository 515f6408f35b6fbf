package dto

import "github.com/SscSPs/fund_reconciliation/internal/core/domain"

// ReviewTransactionRequest tags one bank or goal transaction.
type ReviewTransactionRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Side          string `json:"side" binding:"required,txnside" example:"BANK"`
	Tag           string `json:"tag" binding:"required,reviewtag" example:"TIMING_DIFFERENCE"`
	Notes         string `json:"notes,omitempty" binding:"max=2000"`
}

// BulkReviewRequest applies one tag to many transactions, all or nothing.
type BulkReviewRequest struct {
	BankIDs      []string `json:"bankIds,omitempty" binding:"omitempty,max=500,dive,required"`
	GoalTxnCodes []string `json:"goalTxnCodes,omitempty" binding:"omitempty,max=500,dive,required"`
	Tag          string   `json:"tag" binding:"required,reviewtag"`
	Notes        string   `json:"notes,omitempty" binding:"max=2000"`
}

// UpdatedCounts counts written rows per ledger.
type UpdatedCounts struct {
	Bank int `json:"bank"`
	Goal int `json:"goal"`
}

// BulkReviewResponse is returned by a successful bulk review.
type BulkReviewResponse struct {
	Success       bool          `json:"success"`
	UpdatedCounts UpdatedCounts `json:"updatedCounts"`
}

// ResolveTransactionRequest moves a transaction to APPROVED or REJECTED.
type ResolveTransactionRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Side          string `json:"side" binding:"required,txnside"`
	Decision      string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Notes         string `json:"notes,omitempty" binding:"max=2000"`
}

// ResolveTransactionResponse echoes the applied transition.
type ResolveTransactionResponse struct {
	TransactionID string `json:"transactionId"`
	Side          string `json:"side"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// ReferenceDataResponse describes the vocabularies clients build review forms from.
type ReferenceDataResponse struct {
	TagSetVersion    int                         `json:"tagSetVersion" example:"1"`
	ReviewTags       []domain.ReviewTag          `json:"reviewTags"`
	LegacyTagAliases map[string]domain.ReviewTag `json:"legacyTagAliases"`
	FundCodes        []domain.FundCode           `json:"fundCodes"`
}
