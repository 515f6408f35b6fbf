package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchType records which pass (or which human action) produced a match.
type MatchType string

const (
	MatchExact           MatchType = "EXACT"
	MatchAmount          MatchType = "AMOUNT"
	MatchSplitBankToFund MatchType = "SPLIT_BANK_TO_FUND" // N bank transactions -> one goal transaction
	MatchSplitFundToBank MatchType = "SPLIT_FUND_TO_BANK" // N goal transactions -> one bank transaction
	MatchManual          MatchType = "MANUAL"
)

// IsSplit reports whether the match aggregates several transactions on one side.
func (t MatchType) IsSplit() bool {
	return t == MatchSplitBankToFund || t == MatchSplitFundToBank
}

// MatchInfo is the immutable record shared by every member of a match group.
type MatchInfo struct {
	MatchID            string          `json:"matchId"`
	GoalNumber         string          `json:"goalNumber"`
	MatchType          MatchType       `json:"matchType"`
	Confidence         float64         `json:"confidence"`
	MatchedBankIDs     []string        `json:"matchedBankIds"`
	MatchedGoalTxnIDs  []string        `json:"matchedGoalTxnIds"`
	BankTotal          decimal.Decimal `json:"bankTotal"`
	GoalTxnTotal       decimal.Decimal `json:"goalTxnTotal"`
	AmountDifference   decimal.Decimal `json:"amountDifference"`
	DateDifferenceDays int             `json:"dateDifferenceDays"`
	MatchedBy          string          `json:"matchedBy"`
	MatchedAt          time.Time       `json:"matchedAt"`
}

// GoalOutcome is everything the matcher decided for one goal. It is committed
// as a single unit.
type GoalOutcome struct {
	GoalNumber string
	Matches    []MatchInfo
	Changes    []StatusChange
}

// GoalFilter selects which goals a batch run walks.
type GoalFilter struct {
	DateRange  DateRange
	GoalNumber *string
}
