package matching_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/core/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}

func bankTxn(id string, amount int64, on time.Time, ref string) domain.BankTransaction {
	b := domain.BankTransaction{
		ID:                   id,
		GoalNumber:           "G1",
		TransactionDate:      on,
		TransactionType:      domain.Deposit,
		TotalAmount:          d(amount),
		ReconciliationStatus: domain.StatusPending,
	}
	if ref != "" {
		b.SourceTransactionID = strPtr(ref)
	}
	return b
}

func goalTxn(code string, amount int64, on time.Time, ref string) domain.GoalTransaction {
	g := domain.GoalTransaction{
		GoalTransactionCode:  code,
		GoalNumber:           "G1",
		TransactionDate:      on,
		TransactionType:      domain.Deposit,
		TotalAmount:          d(amount),
		ReconciliationStatus: domain.StatusPending,
	}
	if ref != "" {
		g.TransactionID = strPtr(ref)
	}
	return g
}

func TestEngine_ExactMatch(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultPolicy())
	res := engine.Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 500000, day(2024, 3, 1), "TXN1")},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 500000, day(2024, 3, 1), "TXN1")},
	})

	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, domain.MatchExact, m.Info.MatchType)
	assert.Equal(t, 1.0, m.Info.Confidence)
	assert.Equal(t, domain.StatusMatched, m.Status)
	assert.Equal(t, []string{"B1"}, m.Info.MatchedBankIDs)
	assert.Equal(t, []string{"GT1"}, m.Info.MatchedGoalTxnIDs)
	assert.Empty(t, res.UnmatchedBankIDs)
	assert.Equal(t, matching.Breakdown{Exact: 1}, res.Breakdown())
}

func TestEngine_ExactIsCaseSensitive(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultPolicy())
	res := engine.Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 500000, day(2024, 3, 1), "txn1")},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 900000, day(2024, 6, 1), "TXN1")},
	})
	assert.Empty(t, res.Matches)
	assert.Equal(t, []string{"B1"}, res.UnmatchedBankIDs)
	assert.Equal(t, []string{"GT1"}, res.UnmatchedGoalCodes)
}

func TestEngine_ExactWithVariance(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultPolicy())
	res := engine.Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 500000, day(2024, 3, 1), "TXN1")},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 450000, day(2024, 3, 1), "TXN1")},
	})
	require.Len(t, res.Matches, 1)
	assert.Equal(t, domain.MatchExact, res.Matches[0].Info.MatchType)
	assert.Equal(t, domain.StatusVarianceDetected, res.Matches[0].Status)
	assert.True(t, res.Matches[0].Info.AmountDifference.Equal(d(50000)))
}

func TestEngine_AmountMatch(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultPolicy())
	res := engine.Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 100000, day(2024, 3, 1), "")},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 100300, day(2024, 3, 10), "")},
	})

	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, domain.MatchAmount, m.Info.MatchType)
	assert.Equal(t, domain.StatusAutoApproved, m.Status)
	assert.Equal(t, 9, m.Info.DateDifferenceDays)
	assert.True(t, m.Info.AmountDifference.Equal(d(300)))
	assert.Less(t, m.Info.Confidence, 1.0)
	assert.GreaterOrEqual(t, m.Info.Confidence, 0.5)
}

func TestEngine_AmountOutsideWindow(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultPolicy())
	res := engine.Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 100000, day(2024, 3, 1), "")},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 100000, day(2024, 4, 1), "")},
	})
	assert.Empty(t, res.Matches, "31 days apart is outside the default window")

	wide := matching.DefaultPolicy()
	wide.WindowDays = 45
	res = matching.NewEngine(wide).Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 100000, day(2024, 3, 1), "")},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 100000, day(2024, 4, 1), "")},
	})
	require.Len(t, res.Matches, 1)
	assert.Equal(t, domain.StatusMatched, res.Matches[0].Status)
}

func TestEngine_AmountRequiresSameType(t *testing.T) {
	withdrawal := goalTxn("GT1", 100000, day(2024, 3, 1), "")
	withdrawal.TransactionType = domain.Withdrawal
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 100000, day(2024, 3, 1), "")},
		Goal:       []domain.GoalTransaction{withdrawal},
	})
	assert.Empty(t, res.Matches)
}

func TestEngine_AmountGreedyNearest(t *testing.T) {
	// B1 could pair with either goal transaction; the same-day one wins and
	// the other falls to B2.
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank: []domain.BankTransaction{
			bankTxn("B1", 100000, day(2024, 3, 5), ""),
			bankTxn("B2", 100000, day(2024, 3, 12), ""),
		},
		Goal: []domain.GoalTransaction{
			goalTxn("GT1", 100000, day(2024, 3, 10), ""),
			goalTxn("GT2", 100000, day(2024, 3, 5), ""),
		},
	})
	require.Len(t, res.Matches, 2)
	pairs := map[string]string{}
	for _, m := range res.Matches {
		pairs[m.Info.MatchedBankIDs[0]] = m.Info.MatchedGoalTxnIDs[0]
	}
	assert.Equal(t, "GT2", pairs["B1"])
	assert.Equal(t, "GT1", pairs["B2"])
}

func TestEngine_AmountTieBreaksOnAmountDifference(t *testing.T) {
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 100000, day(2024, 3, 5), "")},
		Goal: []domain.GoalTransaction{
			goalTxn("GT1", 100800, day(2024, 3, 5), ""),
			goalTxn("GT2", 100100, day(2024, 3, 5), ""),
		},
	})
	require.Len(t, res.Matches, 1)
	assert.Equal(t, []string{"GT2"}, res.Matches[0].Info.MatchedGoalTxnIDs)
	assert.Equal(t, []string{"GT1"}, res.UnmatchedGoalCodes)
}

func TestEngine_ExactTakesPrecedenceOverAmount(t *testing.T) {
	// B1 is an exact-amount, same-day candidate for GT2, but its reference
	// ties it to GT1.
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 100000, day(2024, 3, 1), "REF-9")},
		Goal: []domain.GoalTransaction{
			goalTxn("GT1", 100500, day(2024, 3, 20), "REF-9"),
			goalTxn("GT2", 100000, day(2024, 3, 1), ""),
		},
	})
	require.Len(t, res.Matches, 1)
	assert.Equal(t, domain.MatchExact, res.Matches[0].Info.MatchType)
	assert.Equal(t, []string{"GT1"}, res.Matches[0].Info.MatchedGoalTxnIDs)
	assert.Equal(t, []string{"GT2"}, res.UnmatchedGoalCodes)
}

func TestEngine_SplitBankToFund(t *testing.T) {
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank: []domain.BankTransaction{
			bankTxn("B1", 40000, day(2024, 3, 5), ""),
			bankTxn("B2", 60000, day(2024, 3, 5), ""),
		},
		Goal: []domain.GoalTransaction{goalTxn("GT1", 100000, day(2024, 3, 5), "")},
	})

	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, domain.MatchSplitBankToFund, m.Info.MatchType)
	assert.True(t, m.Info.BankTotal.Equal(d(100000)))
	assert.True(t, m.Info.GoalTxnTotal.Equal(d(100000)))
	assert.ElementsMatch(t, []string{"B1", "B2"}, m.Info.MatchedBankIDs)
	assert.Equal(t, domain.StatusMatched, m.Status)
	assert.LessOrEqual(t, m.Info.Confidence, 0.8)
	assert.Equal(t, matching.Breakdown{Split: 1}, res.Breakdown())
}

func TestEngine_SplitFundToBank(t *testing.T) {
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 300000, day(2024, 3, 5), "")},
		Goal: []domain.GoalTransaction{
			goalTxn("GT1", 100000, day(2024, 3, 5), ""),
			goalTxn("GT2", 150000, day(2024, 3, 5), ""),
			goalTxn("GT3", 50400, day(2024, 3, 5), ""),
		},
	})

	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, domain.MatchSplitFundToBank, m.Info.MatchType)
	assert.Equal(t, []string{"GT1", "GT2", "GT3"}, m.Info.MatchedGoalTxnIDs)
	assert.True(t, m.Info.GoalTxnTotal.Equal(d(300400)))
	assert.Equal(t, domain.StatusAutoApproved, m.Status)
	assert.True(t, matching.DefaultTolerance().Within(m.Info.BankTotal, m.Info.GoalTxnTotal))
}

func TestEngine_SplitRequiresSameDay(t *testing.T) {
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank: []domain.BankTransaction{
			bankTxn("B1", 40000, day(2024, 3, 5), ""),
			bankTxn("B2", 60000, day(2024, 3, 6), ""),
		},
		Goal: []domain.GoalTransaction{goalTxn("GT1", 100000, day(2024, 3, 5), "")},
	})
	assert.Empty(t, res.Matches)
}

func TestEngine_MissingCounterpart(t *testing.T) {
	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{bankTxn("B1", 250000, day(2024, 3, 1), "")},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 100000, day(2024, 3, 1), "")},
	})
	assert.Empty(t, res.Matches)
	assert.Equal(t, []string{"B1"}, res.UnmatchedBankIDs)
}

func TestEngine_IgnoresResolvedTransactions(t *testing.T) {
	matched := bankTxn("B1", 500000, day(2024, 3, 1), "TXN1")
	matched.ReconciliationStatus = domain.StatusMatched
	matched.MatchInfo = &domain.MatchInfo{MatchID: "m-1"}

	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{matched},
		Goal:       []domain.GoalTransaction{goalTxn("GT1", 500000, day(2024, 3, 1), "TXN1")},
	})
	assert.Empty(t, res.Matches)
	assert.Empty(t, res.UnmatchedBankIDs)
	assert.Equal(t, []string{"GT1"}, res.UnmatchedGoalCodes)
}

func TestEngine_NoDoubleMatching(t *testing.T) {
	var bank []domain.BankTransaction
	var goal []domain.GoalTransaction
	for i := 0; i < 6; i++ {
		bank = append(bank, bankTxn(fmt.Sprintf("B%d", i), int64(50000+i*10000), day(2024, 3, 1+i%3), ""))
		goal = append(goal, goalTxn(fmt.Sprintf("GT%d", i), int64(50000+i*10000+200), day(2024, 3, 2+i%2), ""))
	}
	bank = append(bank, bankTxn("B9", 30000, day(2024, 3, 4), ""), bankTxn("B8", 20000, day(2024, 3, 4), ""))
	goal = append(goal, goalTxn("GT9", 50000, day(2024, 3, 4), ""))

	res := matching.NewEngine(matching.DefaultPolicy()).Run(matching.Input{GoalNumber: "G1", Bank: bank, Goal: goal})

	seen := map[string]bool{}
	for _, m := range res.Matches {
		for _, id := range append(append([]string{}, m.Info.MatchedBankIDs...), m.Info.MatchedGoalTxnIDs...) {
			assert.False(t, seen[id], "%s appears in two matches", id)
			seen[id] = true
		}
		if m.Info.MatchType.IsSplit() {
			assert.True(t, matching.DefaultTolerance().Within(m.Info.BankTotal, m.Info.GoalTxnTotal))
		}
	}
	for _, id := range res.UnmatchedBankIDs {
		assert.False(t, seen[id])
	}
}

func TestEngine_Deterministic(t *testing.T) {
	in := matching.Input{
		GoalNumber: "G1",
		Bank: []domain.BankTransaction{
			bankTxn("B3", 60000, day(2024, 3, 5), ""),
			bankTxn("B1", 40000, day(2024, 3, 5), ""),
			bankTxn("B2", 60000, day(2024, 3, 5), ""),
		},
		Goal: []domain.GoalTransaction{goalTxn("GT1", 100000, day(2024, 3, 5), "")},
	}
	engine := matching.NewEngine(matching.DefaultPolicy())
	first := engine.Run(in)
	in.Bank[0], in.Bank[2] = in.Bank[2], in.Bank[0]
	second := engine.Run(in)

	require.Len(t, first.Matches, 1)
	assert.Equal(t, []string{"B1", "B2"}, first.Matches[0].Info.MatchedBankIDs, "lowest ids win")
	assert.Equal(t, first.Matches, second.Matches)
}

func TestEngine_UpstreamTransactionTypes(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultPolicy())
	switchType := domain.TransactionType("SWITCH")

	b := bankTxn("B1", 200000, day(2024, 3, 1), "")
	b.TransactionType = switchType
	g := goalTxn("GT1", 200000, day(2024, 3, 2), "")
	g.TransactionType = switchType
	deposit := goalTxn("GT2", 200000, day(2024, 3, 1), "")

	res := engine.Run(matching.Input{
		GoalNumber: "G1",
		Bank:       []domain.BankTransaction{b},
		Goal:       []domain.GoalTransaction{deposit, g},
	})

	require.Len(t, res.Matches, 1)
	assert.Equal(t, []string{"GT1"}, res.Matches[0].Info.MatchedGoalTxnIDs, "types must agree even when not DEPOSIT or WITHDRAWAL")
	assert.Equal(t, []string{"GT2"}, res.UnmatchedGoalCodes)
}
