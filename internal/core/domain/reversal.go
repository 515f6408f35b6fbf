package domain

import "time"

// ReversalPair links two bank transactions that offset each other.
type ReversalPair struct {
	PairID               string               `json:"pairId"`
	GoalNumber           string               `json:"goalNumber"`
	FirstBankID          string               `json:"firstBankId"`
	SecondBankID         string               `json:"secondBankId"`
	FirstPreviousStatus  ReconciliationStatus `json:"firstPreviousStatus"`
	SecondPreviousStatus ReconciliationStatus `json:"secondPreviousStatus"`
	LinkedBy             string               `json:"linkedBy"`
	LinkedAt             time.Time            `json:"linkedAt"`
}

// PartnerOf returns the other side of the pair, or "" if id is not a member.
func (p ReversalPair) PartnerOf(id string) string {
	switch id {
	case p.FirstBankID:
		return p.SecondBankID
	case p.SecondBankID:
		return p.FirstBankID
	}
	return ""
}

// PreviousStatusOf returns the status id held before the pair was linked.
func (p ReversalPair) PreviousStatusOf(id string) ReconciliationStatus {
	if id == p.SecondBankID {
		return p.SecondPreviousStatus
	}
	return p.FirstPreviousStatus
}

// IsReversalOf reports whether a and b offset each other: equal magnitude and
// opposite direction, either by type or by sign.
func IsReversalOf(a, b BankTransaction) bool {
	if a.ID == b.ID || a.GoalNumber != b.GoalNumber {
		return false
	}
	if !a.TotalAmount.Abs().Equal(b.TotalAmount.Abs()) || a.TotalAmount.IsZero() {
		return false
	}
	if a.TransactionType.Opposes(b.TransactionType) {
		return true
	}
	return a.TransactionType == b.TransactionType && a.TotalAmount.Sign() != b.TotalAmount.Sign()
}
