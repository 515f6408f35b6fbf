package services_test

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
)

var (
	day0      = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	fixedTime = func() time.Time { return fixedNow }
)

func on(offset int) time.Time {
	return day0.AddDate(0, 0, offset)
}

func strPtr(s string) *string {
	return &s
}

func bankTxn(id, goal string, amount int64, date time.Time, ref string) domain.BankTransaction {
	b := domain.BankTransaction{
		ID:                   id,
		GoalNumber:           goal,
		TransactionDate:      date,
		TransactionType:      domain.Deposit,
		TotalAmount:          decimal.NewFromInt(amount),
		ReconciliationStatus: domain.StatusPending,
	}
	if ref != "" {
		b.SourceTransactionID = strPtr(ref)
	}
	return b
}

func goalTxn(code, goal string, amount int64, date time.Time, txnID string) domain.GoalTransaction {
	g := domain.GoalTransaction{
		GoalTransactionCode:  code,
		GoalNumber:           goal,
		TransactionDate:      date,
		TransactionType:      domain.Deposit,
		TotalAmount:          decimal.NewFromInt(amount),
		ReconciliationStatus: domain.StatusPending,
	}
	if txnID != "" {
		g.TransactionID = strPtr(txnID)
	}
	return g
}

// matched returns copies of b and g already paired by an earlier run.
func matched(b domain.BankTransaction, g domain.GoalTransaction, matchType domain.MatchType) (domain.BankTransaction, domain.GoalTransaction) {
	info := &domain.MatchInfo{
		MatchID:           "m-" + b.ID,
		GoalNumber:        b.GoalNumber,
		MatchType:         matchType,
		Confidence:        1,
		MatchedBankIDs:    []string{b.ID},
		MatchedGoalTxnIDs: []string{g.GoalTransactionCode},
		BankTotal:         b.TotalAmount,
		GoalTxnTotal:      g.TotalAmount,
	}
	b.MatchInfo, g.MatchInfo = info, info
	b.ReconciliationStatus, g.ReconciliationStatus = domain.StatusMatched, domain.StatusMatched
	return b, g
}

// changeFor finds the change recorded for ref, if any.
func changeFor(changes []domain.StatusChange, side domain.Side, ref string) (domain.StatusChange, bool) {
	for _, ch := range changes {
		if ch.Side == side && ch.TransactionRef == ref {
			return ch, true
		}
	}
	return domain.StatusChange{}, false
}

var assertErr = errors.New("connection reset")

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
