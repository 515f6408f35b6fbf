package matching

import (
	"sort"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Input is one goal's unresolved transactions.
type Input struct {
	GoalNumber string
	Bank       []domain.BankTransaction
	Goal       []domain.GoalTransaction
}

// Match is one group produced by the engine. Info has no MatchID or MatchedAt;
// the caller stamps those when persisting.
type Match struct {
	Info   domain.MatchInfo
	Status domain.ReconciliationStatus // applied to every member on both sides
}

// Breakdown counts match groups per pass.
type Breakdown struct {
	Exact  int `json:"exact"`
	Amount int `json:"amount"`
	Split  int `json:"split"`
}

// Add accumulates other into b.
func (b *Breakdown) Add(other Breakdown) {
	b.Exact += other.Exact
	b.Amount += other.Amount
	b.Split += other.Split
}

// Result is the outcome of running the engine over one goal.
type Result struct {
	GoalNumber         string
	Matches            []Match
	UnmatchedBankIDs   []string
	UnmatchedGoalCodes []string
	SkippedSplitGroups []SkippedSplitGroup
}

// Breakdown summarises the matches by pass.
func (r Result) Breakdown() Breakdown {
	var b Breakdown
	for _, m := range r.Matches {
		switch {
		case m.Info.MatchType == domain.MatchExact:
			b.Exact++
		case m.Info.MatchType == domain.MatchAmount:
			b.Amount++
		case m.Info.MatchType.IsSplit():
			b.Split++
		}
	}
	return b
}

// Engine runs EXACT, AMOUNT and SPLIT passes in that order. Each pass only
// sees what the previous passes left unmatched.
type Engine struct {
	policy Policy
	split  *SplitDetector
}

// NewEngine creates an Engine for the given policy.
func NewEngine(policy Policy) *Engine {
	policy = policy.normalized()
	return &Engine{
		policy: policy,
		split:  NewSplitDetector(policy.Tolerance, policy.SplitCandidateCap),
	}
}

// Policy returns the policy the engine was built with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Run matches one goal. Transactions that are already resolved are ignored,
// so running over an already processed set yields no matches.
func (e *Engine) Run(in Input) Result {
	bank := make([]domain.BankTransaction, 0, len(in.Bank))
	for _, b := range in.Bank {
		if b.IsUnresolved() {
			bank = append(bank, b)
		}
	}
	goal := make([]domain.GoalTransaction, 0, len(in.Goal))
	for _, g := range in.Goal {
		if g.IsUnresolved() {
			goal = append(goal, g)
		}
	}
	sort.Slice(bank, func(i, j int) bool { return bank[i].ID < bank[j].ID })
	sort.Slice(goal, func(i, j int) bool { return goal[i].GoalTransactionCode < goal[j].GoalTransactionCode })

	res := Result{GoalNumber: in.GoalNumber}
	usedBank := make(map[string]bool, len(bank))
	usedGoal := make(map[string]bool, len(goal))

	res.Matches = append(res.Matches, e.exactPass(in.GoalNumber, bank, goal, usedBank, usedGoal)...)
	res.Matches = append(res.Matches, e.amountPass(in.GoalNumber, bank, goal, usedBank, usedGoal)...)

	freeBank := freeBankTxns(bank, usedBank)
	freeGoal := freeGoalTxns(goal, usedGoal)
	splits, skipped := e.split.Detect(in.GoalNumber, freeBank, freeGoal)
	for _, m := range splits {
		for _, id := range m.Info.MatchedBankIDs {
			usedBank[id] = true
		}
		for _, code := range m.Info.MatchedGoalTxnIDs {
			usedGoal[code] = true
		}
	}
	res.Matches = append(res.Matches, splits...)
	res.SkippedSplitGroups = skipped

	for _, b := range bank {
		if !usedBank[b.ID] {
			res.UnmatchedBankIDs = append(res.UnmatchedBankIDs, b.ID)
		}
	}
	for _, g := range goal {
		if !usedGoal[g.GoalTransactionCode] {
			res.UnmatchedGoalCodes = append(res.UnmatchedGoalCodes, g.GoalTransactionCode)
		}
	}
	return res
}

// exactPass pairs transactions whose bank reference equals the goal
// transaction id. Comparison is exact and case-sensitive.
func (e *Engine) exactPass(goalNumber string, bank []domain.BankTransaction, goal []domain.GoalTransaction, usedBank, usedGoal map[string]bool) []Match {
	byTxnID := make(map[string][]int)
	for i, g := range goal {
		if g.TransactionID != nil && *g.TransactionID != "" {
			byTxnID[*g.TransactionID] = append(byTxnID[*g.TransactionID], i)
		}
	}

	var matches []Match
	for _, b := range bank {
		if b.SourceTransactionID == nil || *b.SourceTransactionID == "" {
			continue
		}
		for _, gi := range byTxnID[*b.SourceTransactionID] {
			g := goal[gi]
			if usedGoal[g.GoalTransactionCode] {
				continue
			}
			usedBank[b.ID] = true
			usedGoal[g.GoalTransactionCode] = true
			diff := b.TotalAmount.Sub(g.TotalAmount).Abs()
			matches = append(matches, Match{
				Info:   pairInfo(goalNumber, domain.MatchExact, 1.0, b, g, diff),
				Status: e.classify(b.TotalAmount, g.TotalAmount),
			})
			break
		}
	}
	return matches
}

type candidatePair struct {
	bank       int
	goal       int
	dateDiff   int
	amountDiff decimal.Decimal
}

// amountPass greedily pairs the nearest candidates: smallest date gap first,
// then smallest amount gap. Each transaction is consumed at most once.
func (e *Engine) amountPass(goalNumber string, bank []domain.BankTransaction, goal []domain.GoalTransaction, usedBank, usedGoal map[string]bool) []Match {
	tol := e.policy.Tolerance
	var pairs []candidatePair
	for bi, b := range bank {
		if usedBank[b.ID] {
			continue
		}
		for gi, g := range goal {
			if usedGoal[g.GoalTransactionCode] || b.TransactionType != g.TransactionType {
				continue
			}
			days := domain.DaysBetween(b.TransactionDate, g.TransactionDate)
			if days > e.policy.WindowDays || !tol.Within(b.TotalAmount, g.TotalAmount) {
				continue
			}
			pairs = append(pairs, candidatePair{bank: bi, goal: gi, dateDiff: days, amountDiff: b.TotalAmount.Sub(g.TotalAmount).Abs()})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		pi, pj := pairs[i], pairs[j]
		if pi.dateDiff != pj.dateDiff {
			return pi.dateDiff < pj.dateDiff
		}
		if c := pi.amountDiff.Cmp(pj.amountDiff); c != 0 {
			return c < 0
		}
		if bank[pi.bank].ID != bank[pj.bank].ID {
			return bank[pi.bank].ID < bank[pj.bank].ID
		}
		return goal[pi.goal].GoalTransactionCode < goal[pj.goal].GoalTransactionCode
	})

	var matches []Match
	for _, p := range pairs {
		b, g := bank[p.bank], goal[p.goal]
		if usedBank[b.ID] || usedGoal[g.GoalTransactionCode] {
			continue
		}
		usedBank[b.ID] = true
		usedGoal[g.GoalTransactionCode] = true
		band := tol.Band(b.TotalAmount, g.TotalAmount)
		matches = append(matches, Match{
			Info:   pairInfo(goalNumber, domain.MatchAmount, amountConfidence(p.dateDiff, e.policy.WindowDays, p.amountDiff, band), b, g, p.amountDiff),
			Status: e.classify(b.TotalAmount, g.TotalAmount),
		})
	}
	return matches
}

// classify maps an amount pair to the status of a successful pairing.
func (e *Engine) classify(a, b decimal.Decimal) domain.ReconciliationStatus {
	switch {
	case a.Equal(b):
		return domain.StatusMatched
	case e.policy.Tolerance.Within(a, b):
		return domain.StatusAutoApproved
	default:
		return domain.StatusVarianceDetected
	}
}

func pairInfo(goalNumber string, t domain.MatchType, confidence float64, b domain.BankTransaction, g domain.GoalTransaction, diff decimal.Decimal) domain.MatchInfo {
	return domain.MatchInfo{
		GoalNumber:         goalNumber,
		MatchType:          t,
		Confidence:         confidence,
		MatchedBankIDs:     []string{b.ID},
		MatchedGoalTxnIDs:  []string{g.GoalTransactionCode},
		BankTotal:          b.TotalAmount,
		GoalTxnTotal:       g.TotalAmount,
		AmountDifference:   diff,
		DateDifferenceDays: domain.DaysBetween(b.TransactionDate, g.TransactionDate),
		MatchedBy:          domain.SystemActor,
	}
}

func freeBankTxns(bank []domain.BankTransaction, used map[string]bool) []domain.BankTransaction {
	out := make([]domain.BankTransaction, 0, len(bank))
	for _, b := range bank {
		if !used[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

func freeGoalTxns(goal []domain.GoalTransaction, used map[string]bool) []domain.GoalTransaction {
	out := make([]domain.GoalTransaction, 0, len(goal))
	for _, g := range goal {
		if !used[g.GoalTransactionCode] {
			out = append(out, g)
		}
	}
	return out
}
