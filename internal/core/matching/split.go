package matching

import (
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SkippedSplitGroup reports a same-day bucket too large for the bounded subset search.
type SkippedSplitGroup struct {
	Direction      domain.MatchType `json:"direction"`
	CounterpartID  string           `json:"counterpartId"`
	Day            time.Time        `json:"day"`
	CandidateCount int              `json:"candidateCount"`
}

// SplitDetector finds N:1 and 1:N groups among same-day transactions.
// It is a bounded search over small buckets, not a general subset-sum solver.
type SplitDetector struct {
	tolerance Tolerance
	cap       int
}

// NewSplitDetector creates a detector. Buckets with more than candidateCap
// candidates are skipped and reported.
func NewSplitDetector(tolerance Tolerance, candidateCap int) *SplitDetector {
	if candidateCap < 2 {
		candidateCap = DefaultSplitCandidateCap
	}
	return &SplitDetector{tolerance: tolerance, cap: candidateCap}
}

// leg is the side-agnostic view of a transaction used by the search.
type leg struct {
	id     string
	day    time.Time
	typ    domain.TransactionType
	amount decimal.Decimal
}

// group is one found split: the single counterpart and the indexes of its parts.
type group struct {
	one   int
	parts []int
	sum   decimal.Decimal
}

// Detect runs SPLIT_BANK_TO_FUND first, then SPLIT_FUND_TO_BANK over what is
// left. Inputs must be sorted by id ascending; the first valid group wins.
func (d *SplitDetector) Detect(goalNumber string, bank []domain.BankTransaction, goal []domain.GoalTransaction) ([]Match, []SkippedSplitGroup) {
	bankLegs := make([]leg, len(bank))
	for i, b := range bank {
		bankLegs[i] = leg{id: b.ID, day: domain.CalendarDay(b.TransactionDate), typ: b.TransactionType, amount: b.TotalAmount}
	}
	goalLegs := make([]leg, len(goal))
	for i, g := range goal {
		goalLegs[i] = leg{id: g.GoalTransactionCode, day: domain.CalendarDay(g.TransactionDate), typ: g.TransactionType, amount: g.TotalAmount}
	}
	usedBank := make([]bool, len(bank))
	usedGoal := make([]bool, len(goal))

	var matches []Match
	var skipped []SkippedSplitGroup

	bankToFund, skip := d.search(domain.MatchSplitBankToFund, goalLegs, bankLegs, usedGoal, usedBank)
	skipped = append(skipped, skip...)
	for _, grp := range bankToFund {
		g := goal[grp.one]
		info := domain.MatchInfo{
			GoalNumber:        goalNumber,
			MatchType:         domain.MatchSplitBankToFund,
			MatchedGoalTxnIDs: []string{g.GoalTransactionCode},
			BankTotal:         grp.sum,
			GoalTxnTotal:      g.TotalAmount,
			MatchedBy:         domain.SystemActor,
		}
		for _, i := range grp.parts {
			info.MatchedBankIDs = append(info.MatchedBankIDs, bank[i].ID)
		}
		matches = append(matches, d.finish(info))
	}

	fundToBank, skip := d.search(domain.MatchSplitFundToBank, bankLegs, goalLegs, usedBank, usedGoal)
	skipped = append(skipped, skip...)
	for _, grp := range fundToBank {
		b := bank[grp.one]
		info := domain.MatchInfo{
			GoalNumber:     goalNumber,
			MatchType:      domain.MatchSplitFundToBank,
			MatchedBankIDs: []string{b.ID},
			BankTotal:      b.TotalAmount,
			GoalTxnTotal:   grp.sum,
			MatchedBy:      domain.SystemActor,
		}
		for _, i := range grp.parts {
			info.MatchedGoalTxnIDs = append(info.MatchedGoalTxnIDs, goal[i].GoalTransactionCode)
		}
		matches = append(matches, d.finish(info))
	}

	return matches, skipped
}

func (d *SplitDetector) finish(info domain.MatchInfo) Match {
	info.AmountDifference = info.BankTotal.Sub(info.GoalTxnTotal).Abs()
	band := d.tolerance.Band(info.BankTotal, info.GoalTxnTotal)
	info.Confidence = splitConfidence(info.AmountDifference, band)
	status := domain.StatusAutoApproved
	if info.AmountDifference.IsZero() {
		status = domain.StatusMatched
	}
	return Match{Info: info, Status: status}
}

// search walks every free single leg in order and looks for a subset of the
// free many legs, same day and type, whose sum is within tolerance of it.
func (d *SplitDetector) search(direction domain.MatchType, singles, many []leg, usedSingle, usedMany []bool) ([]group, []SkippedSplitGroup) {
	var groups []group
	var skipped []SkippedSplitGroup
	for si, s := range singles {
		if usedSingle[si] {
			continue
		}
		var cands []int
		for mi, m := range many {
			if !usedMany[mi] && m.day.Equal(s.day) && m.typ == s.typ {
				cands = append(cands, mi)
			}
		}
		if len(cands) < 2 {
			continue
		}
		if len(cands) > d.cap {
			skipped = append(skipped, SkippedSplitGroup{
				Direction:      direction,
				CounterpartID:  s.id,
				Day:            s.day,
				CandidateCount: len(cands),
			})
			continue
		}
		parts, sum, ok := d.firstSubset(many, cands, s.amount)
		if !ok {
			continue
		}
		usedSingle[si] = true
		for _, mi := range parts {
			usedMany[mi] = true
		}
		groups = append(groups, group{one: si, parts: parts, sum: sum})
	}
	return groups, skipped
}

// firstSubset tries subsets by size ascending, lexicographically within a
// size, and returns the first whose sum is within tolerance of target.
func (d *SplitDetector) firstSubset(legs []leg, cands []int, target decimal.Decimal) ([]int, decimal.Decimal, bool) {
	n := len(cands)
	for size := 2; size <= n; size++ {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		for {
			sum := decimal.Zero
			for _, i := range idx {
				sum = sum.Add(legs[cands[i]].amount)
			}
			if d.tolerance.Within(sum, target) {
				parts := make([]int, size)
				for k, i := range idx {
					parts[k] = cands[i]
				}
				return parts, sum, true
			}
			if !nextCombination(idx, n) {
				break
			}
		}
	}
	return nil, decimal.Zero, false
}

// nextCombination advances idx to the next k-combination of [0,n) in
// lexicographic order. It returns false after the last one.
func nextCombination(idx []int, n int) bool {
	k := len(idx)
	i := k - 1
	for i >= 0 && idx[i] == n-k+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < k; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}
