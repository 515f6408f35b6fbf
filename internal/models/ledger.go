package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundAmounts are the four per-fund columns carried by both ledger tables.
type FundAmounts struct {
	XUMMF decimal.Decimal `db:"fund_xummf"`
	XUBF  decimal.Decimal `db:"fund_xubf"`
	XUDEF decimal.Decimal `db:"fund_xudef"`
	XUREF decimal.Decimal `db:"fund_xuref"`
}

// ReviewColumns are the nullable review workflow columns.
type ReviewColumns struct {
	ReviewTag   *string    `db:"review_tag"`
	ReviewNotes *string    `db:"review_notes"`
	ReviewedBy  *string    `db:"reviewed_by"`
	ReviewedAt  *time.Time `db:"reviewed_at"`
}

// BankTransaction is a row of bank_transactions.
type BankTransaction struct {
	ID                   string          `db:"id"`
	GoalNumber           string          `db:"goal_number"`
	AccountNumber        string          `db:"account_number"`
	SourceTransactionID  *string         `db:"source_transaction_id"`
	TransactionDate      time.Time       `db:"transaction_date"`
	TransactionType      string          `db:"transaction_type"`
	TotalAmount          decimal.Decimal `db:"total_amount"`
	ReconciliationStatus string          `db:"reconciliation_status"`
	MatchID              *string         `db:"match_id"`
	ReversalPairID       *string         `db:"reversal_pair_id"`
	FundAmounts
	ReviewColumns
	AuditFields
}

// GoalTransaction is a row of goal_transactions.
type GoalTransaction struct {
	GoalTransactionCode  string          `db:"goal_transaction_code"`
	GoalNumber           string          `db:"goal_number"`
	AccountNumber        string          `db:"account_number"`
	TransactionID        *string         `db:"transaction_id"`
	TransactionDate      time.Time       `db:"transaction_date"`
	TransactionType      string          `db:"transaction_type"`
	TotalAmount          decimal.Decimal `db:"total_amount"`
	FundTransactionIDs   []string        `db:"fund_transaction_ids"`
	ReconciliationStatus string          `db:"reconciliation_status"`
	MatchID              *string         `db:"match_id"`
	FundAmounts
	ReviewColumns
	AuditFields
}

// MatchGroup is a row of match_groups. Member ids are denormalised so a group
// can be rebuilt from either side without a second query.
type MatchGroup struct {
	MatchID            string          `db:"match_id"`
	GoalNumber         string          `db:"goal_number"`
	MatchType          string          `db:"match_type"`
	Confidence         float64         `db:"confidence"`
	BankIDs            []string        `db:"matched_bank_ids"`
	GoalTxnCodes       []string        `db:"matched_goal_txn_ids"`
	BankTotal          decimal.Decimal `db:"bank_total"`
	GoalTxnTotal       decimal.Decimal `db:"goal_txn_total"`
	AmountDifference   decimal.Decimal `db:"amount_difference"`
	DateDifferenceDays int             `db:"date_difference_days"`
	MatchedBy          string          `db:"matched_by"`
	MatchedAt          time.Time       `db:"matched_at"`
}

// ReversalPair is a row of reversal_pairs.
type ReversalPair struct {
	PairID               string    `db:"pair_id"`
	GoalNumber           string    `db:"goal_number"`
	FirstBankID          string    `db:"first_bank_id"`
	SecondBankID         string    `db:"second_bank_id"`
	FirstPreviousStatus  string    `db:"first_previous_status"`
	SecondPreviousStatus string    `db:"second_previous_status"`
	LinkedBy             string    `db:"linked_by"`
	LinkedAt             time.Time `db:"linked_at"`
}

// StatusAudit is a row of status_audit.
type StatusAudit struct {
	AuditID        int64     `db:"audit_id"`
	Side           string    `db:"side"`
	TransactionRef string    `db:"transaction_ref"`
	FromStatus     string    `db:"from_status"`
	ToStatus       string    `db:"to_status"`
	Actor          string    `db:"actor"`
	Reason         string    `db:"reason"`
	ChangedAt      time.Time `db:"changed_at"`
}
