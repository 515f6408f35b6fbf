package dto

import "github.com/shopspring/decimal"

// ManualMatchRequest pairs reviewer-chosen transactions of one goal.
type ManualMatchRequest struct {
	BankIDs      []string `json:"bankIds" binding:"required,min=1,max=100,dive,required"`
	GoalTxnCodes []string `json:"goalTxnCodes" binding:"required,min=1,max=100,dive,required"`
}

// ManualMatchResponse describes the created group.
type ManualMatchResponse struct {
	MatchID          string          `json:"matchId"`
	MatchedBankCount int             `json:"matchedBankCount"`
	MatchedGoalCount int             `json:"matchedGoalCount"`
	BankTotal        decimal.Decimal `json:"bankTotal"`
	GoalTotal        decimal.Decimal `json:"goalTotal"`
	AmountDifference decimal.Decimal `json:"amountDifference"`
	WithinTolerance  bool            `json:"withinTolerance"`
}

// RemoveMatchRequest releases the match groups of the given bank transactions.
type RemoveMatchRequest struct {
	BankIDs []string `json:"bankIds" binding:"required,min=1,max=100,dive,required"`
}

// RemoveMatchResponse reports how many transactions went back to PENDING.
type RemoveMatchResponse struct {
	Unmatched int `json:"unmatched"`
}
