package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the money-movement direction reported by either ledger.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// Opposes reports whether t and other move money in opposite directions.
func (t TransactionType) Opposes(other TransactionType) bool {
	return (t == Deposit && other == Withdrawal) || (t == Withdrawal && other == Deposit)
}

// ReviewFields hold the human classification applied through the review workflow.
type ReviewFields struct {
	ReviewTag   *ReviewTag `json:"reviewTag,omitempty"`
	ReviewNotes string     `json:"reviewNotes,omitempty"`
	ReviewedBy  string     `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
}

// IsReviewed reports whether a reviewer has tagged the transaction.
func (r ReviewFields) IsReviewed() bool {
	return r.ReviewTag != nil
}

// BankTransaction is one money movement reported by the banking partner.
type BankTransaction struct {
	ID                   string               `json:"id"`
	GoalNumber           string               `json:"goalNumber"`
	AccountNumber        string               `json:"accountNumber"`
	SourceTransactionID  *string              `json:"sourceTransactionId,omitempty"` // bank's own reference
	TransactionDate      time.Time            `json:"transactionDate"`
	TransactionType      TransactionType      `json:"transactionType"`
	TotalAmount          decimal.Decimal      `json:"totalAmount"`
	FundAmounts          FundBreakdown        `json:"fundAmounts"`
	ReconciliationStatus ReconciliationStatus `json:"reconciliationStatus"`
	MatchInfo            *MatchInfo           `json:"matchInfo,omitempty"`
	ReversalPairID       *string              `json:"reversalPairId,omitempty"`
	ReviewFields
	AuditFields
}

// IsUnresolved reports whether the matcher may still pair this transaction.
func (b BankTransaction) IsUnresolved() bool {
	return b.ReconciliationStatus.IsUnresolved() && b.MatchInfo == nil && b.ReversalPairID == nil
}

// GoalTransaction is one internally recorded unit transaction aggregated under a goal.
type GoalTransaction struct {
	GoalTransactionCode  string               `json:"goalTransactionCode"`
	GoalNumber           string               `json:"goalNumber"`
	AccountNumber        string               `json:"accountNumber"`
	TransactionID        *string              `json:"transactionId,omitempty"` // correlates to the bank reference
	TransactionDate      time.Time            `json:"transactionDate"`
	TransactionType      TransactionType      `json:"transactionType"`
	TotalAmount          decimal.Decimal      `json:"totalAmount"`
	FundAmounts          FundBreakdown        `json:"fundAmounts"`
	FundTransactionIDs   []string             `json:"fundTransactionIds"`
	ReconciliationStatus ReconciliationStatus `json:"reconciliationStatus"`
	MatchInfo            *MatchInfo           `json:"matchInfo,omitempty"`
	ReviewFields
	AuditFields
}

// IsUnresolved reports whether the matcher may still pair this transaction.
func (g GoalTransaction) IsUnresolved() bool {
	return g.ReconciliationStatus.IsUnresolved() && g.MatchInfo == nil
}
