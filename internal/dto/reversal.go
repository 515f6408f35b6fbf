package dto

import (
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
)

// ReversalCandidate is one possible counterpart of a reversal.
type ReversalCandidate struct {
	Transaction domain.BankTransaction `json:"transaction"`
	DaysApart   int                    `json:"daysApart"`
}

// ReversalCandidatesResponse lists ranked counterparts of a source transaction.
type ReversalCandidatesResponse struct {
	SourceTransaction domain.BankTransaction `json:"sourceTransaction"`
	Candidates        []ReversalCandidate    `json:"candidates"`
}

// LinkReversalRequest links two bank transactions as a reversal pair.
type LinkReversalRequest struct {
	FirstTransactionID  string `json:"firstTransactionId" binding:"required"`
	SecondTransactionID string `json:"secondTransactionId" binding:"required,nefield=FirstTransactionID"`
}

// ReversalPairInfo describes a pair from the point of view of one member.
type ReversalPairInfo struct {
	PairID      string                 `json:"pairId"`
	Transaction domain.BankTransaction `json:"transaction"`
	Partner     domain.BankTransaction `json:"partner"`
	LinkedBy    string                 `json:"linkedBy"`
	LinkedAt    time.Time              `json:"linkedAt"`
}
