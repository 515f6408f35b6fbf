package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	"github.com/SscSPs/fund_reconciliation/internal/models"
	"github.com/SscSPs/fund_reconciliation/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxReconciliationRepository stores both ledgers, match groups, reversal pairs
// and the status audit trail.
type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryWithTx {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryWithTx = (*PgxReconciliationRepository)(nil)

const matchColumns = `
	m.match_type, m.confidence, m.matched_bank_ids, m.matched_goal_txn_ids,
	m.bank_total, m.goal_txn_total, m.amount_difference, m.date_difference_days,
	m.matched_by, m.matched_at`

const bankSelect = `
	SELECT b.id, b.goal_number, b.account_number, b.source_transaction_id, b.transaction_date,
	       b.transaction_type, b.total_amount, b.fund_xummf, b.fund_xubf, b.fund_xudef, b.fund_xuref,
	       b.reconciliation_status, b.match_id, b.reversal_pair_id,
	       b.review_tag, b.review_notes, b.reviewed_by, b.reviewed_at,
	       b.created_at, b.created_by, b.last_updated_at, b.last_updated_by,` + matchColumns + `
	FROM bank_transactions b
	LEFT JOIN match_groups m ON m.match_id = b.match_id`

const goalSelect = `
	SELECT g.goal_transaction_code, g.goal_number, g.account_number, g.transaction_id, g.transaction_date,
	       g.transaction_type, g.total_amount, g.fund_xummf, g.fund_xubf, g.fund_xudef, g.fund_xuref,
	       g.fund_transaction_ids, g.reconciliation_status, g.match_id,
	       g.review_tag, g.review_notes, g.reviewed_by, g.reviewed_at,
	       g.created_at, g.created_by, g.last_updated_at, g.last_updated_by,` + matchColumns + `
	FROM goal_transactions g
	LEFT JOIN match_groups m ON m.match_id = g.match_id`

// joinedMatch receives the LEFT JOINed match_groups columns, all of which may be NULL.
type joinedMatch struct {
	matchType  *string
	confidence *float64
	bankIDs    []string
	goalIDs    []string
	bankTotal  decimal.NullDecimal
	goalTotal  decimal.NullDecimal
	difference decimal.NullDecimal
	dateDiff   *int32
	matchedBy  *string
	matchedAt  *time.Time
}

func (j *joinedMatch) targets() []any {
	return []any{
		&j.matchType, &j.confidence, &j.bankIDs, &j.goalIDs,
		&j.bankTotal, &j.goalTotal, &j.difference, &j.dateDiff,
		&j.matchedBy, &j.matchedAt,
	}
}

func (j *joinedMatch) model(matchID *string, goalNumber string) *models.MatchGroup {
	if matchID == nil || j.matchType == nil {
		return nil
	}
	g := &models.MatchGroup{
		MatchID:          *matchID,
		GoalNumber:       goalNumber,
		MatchType:        *j.matchType,
		BankIDs:          j.bankIDs,
		GoalTxnCodes:     j.goalIDs,
		BankTotal:        j.bankTotal.Decimal,
		GoalTxnTotal:     j.goalTotal.Decimal,
		AmountDifference: j.difference.Decimal,
	}
	if j.confidence != nil {
		g.Confidence = *j.confidence
	}
	if j.dateDiff != nil {
		g.DateDifferenceDays = int(*j.dateDiff)
	}
	if j.matchedBy != nil {
		g.MatchedBy = *j.matchedBy
	}
	if j.matchedAt != nil {
		g.MatchedAt = *j.matchedAt
	}
	return g
}

func scanBankTransaction(row pgx.Row) (domain.BankTransaction, error) {
	var m models.BankTransaction
	var jm joinedMatch
	dest := []any{
		&m.ID, &m.GoalNumber, &m.AccountNumber, &m.SourceTransactionID, &m.TransactionDate,
		&m.TransactionType, &m.TotalAmount, &m.XUMMF, &m.XUBF, &m.XUDEF, &m.XUREF,
		&m.ReconciliationStatus, &m.MatchID, &m.ReversalPairID,
		&m.ReviewTag, &m.ReviewNotes, &m.ReviewedBy, &m.ReviewedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	}
	if err := row.Scan(append(dest, jm.targets()...)...); err != nil {
		return domain.BankTransaction{}, err
	}
	return mapping.ToDomainBankTransaction(m, jm.model(m.MatchID, m.GoalNumber)), nil
}

func scanGoalTransaction(row pgx.Row) (domain.GoalTransaction, error) {
	var m models.GoalTransaction
	var jm joinedMatch
	dest := []any{
		&m.GoalTransactionCode, &m.GoalNumber, &m.AccountNumber, &m.TransactionID, &m.TransactionDate,
		&m.TransactionType, &m.TotalAmount, &m.XUMMF, &m.XUBF, &m.XUDEF, &m.XUREF,
		&m.FundTransactionIDs, &m.ReconciliationStatus, &m.MatchID,
		&m.ReviewTag, &m.ReviewNotes, &m.ReviewedBy, &m.ReviewedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	}
	if err := row.Scan(append(dest, jm.targets()...)...); err != nil {
		return domain.GoalTransaction{}, err
	}
	return mapping.ToDomainGoalTransaction(m, jm.model(m.MatchID, m.GoalNumber)), nil
}

func (r *PgxReconciliationRepository) queryBank(ctx context.Context, what, query string, args ...any) ([]domain.BankTransaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query "+what, err)
	}
	defer rows.Close()

	txns := make([]domain.BankTransaction, 0)
	for rows.Next() {
		b, err := scanBankTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan "+what, err)
		}
		txns = append(txns, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating "+what, err)
	}
	return txns, nil
}

func (r *PgxReconciliationRepository) queryGoal(ctx context.Context, what, query string, args ...any) ([]domain.GoalTransaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query "+what, err)
	}
	defer rows.Close()

	txns := make([]domain.GoalTransaction, 0)
	for rows.Next() {
		g, err := scanGoalTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan "+what, err)
		}
		txns = append(txns, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating "+what, err)
	}
	return txns, nil
}

// FindBankTransactionByID implements portsrepo.BankTransactionReader
func (r *PgxReconciliationRepository) FindBankTransactionByID(ctx context.Context, id string) (*domain.BankTransaction, error) {
	b, err := scanBankTransaction(r.Pool.QueryRow(ctx, bankSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: bank transaction %s", apperrors.ErrNotFound, id)
		}
		return nil, apperrors.NewAppError(500, "failed to find bank transaction "+id, err)
	}
	return &b, nil
}

// FindBankTransactionsByIDs implements portsrepo.BankTransactionReader
func (r *PgxReconciliationRepository) FindBankTransactionsByIDs(ctx context.Context, ids []string) ([]domain.BankTransaction, error) {
	if len(ids) == 0 {
		return []domain.BankTransaction{}, nil
	}
	return r.queryBank(ctx, "bank transactions by id", bankSelect+` WHERE b.id = ANY($1) ORDER BY b.id`, ids)
}

// ListBankTransactionsByGoal implements portsrepo.BankTransactionReader
func (r *PgxReconciliationRepository) ListBankTransactionsByGoal(ctx context.Context, goalNumber string, dateRange domain.DateRange) ([]domain.BankTransaction, error) {
	query := bankSelect + `
		WHERE b.goal_number = $1
		  AND ($2::date IS NULL OR b.transaction_date >= $2::date)
		  AND ($3::date IS NULL OR b.transaction_date <= $3::date)
		ORDER BY b.id`
	return r.queryBank(ctx, "bank transactions of goal "+goalNumber, query, goalNumber, dateRange.Start, dateRange.End)
}

// ListPendingBankTransactions implements portsrepo.BankTransactionReader
func (r *PgxReconciliationRepository) ListPendingBankTransactions(ctx context.Context, ids []string, limit int) ([]domain.BankTransaction, error) {
	if len(ids) > 0 {
		query := bankSelect + `
			WHERE b.id = ANY($1) AND b.reconciliation_status = 'PENDING'
			ORDER BY b.transaction_date, b.id`
		return r.queryBank(ctx, "selected pending bank transactions", query, ids)
	}
	query := bankSelect + `
		WHERE b.reconciliation_status = 'PENDING'
		ORDER BY b.transaction_date, b.id
		LIMIT $1`
	return r.queryBank(ctx, "pending bank transactions", query, limit)
}

// CountPendingBankTransactions implements portsrepo.BankTransactionReader
func (r *PgxReconciliationRepository) CountPendingBankTransactions(ctx context.Context) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM bank_transactions WHERE reconciliation_status = 'PENDING'`).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count pending bank transactions", err)
	}
	return count, nil
}

// FindGoalTransactionByCode implements portsrepo.GoalTransactionReader
func (r *PgxReconciliationRepository) FindGoalTransactionByCode(ctx context.Context, code string) (*domain.GoalTransaction, error) {
	g, err := scanGoalTransaction(r.Pool.QueryRow(ctx, goalSelect+` WHERE g.goal_transaction_code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: goal transaction %s", apperrors.ErrNotFound, code)
		}
		return nil, apperrors.NewAppError(500, "failed to find goal transaction "+code, err)
	}
	return &g, nil
}

// FindGoalTransactionsByCodes implements portsrepo.GoalTransactionReader
func (r *PgxReconciliationRepository) FindGoalTransactionsByCodes(ctx context.Context, codes []string) ([]domain.GoalTransaction, error) {
	if len(codes) == 0 {
		return []domain.GoalTransaction{}, nil
	}
	return r.queryGoal(ctx, "goal transactions by code", goalSelect+` WHERE g.goal_transaction_code = ANY($1) ORDER BY g.goal_transaction_code`, codes)
}

// ListGoalTransactionsByGoal implements portsrepo.GoalTransactionReader
func (r *PgxReconciliationRepository) ListGoalTransactionsByGoal(ctx context.Context, goalNumber string, dateRange domain.DateRange) ([]domain.GoalTransaction, error) {
	query := goalSelect + `
		WHERE g.goal_number = $1
		  AND ($2::date IS NULL OR g.transaction_date >= $2::date)
		  AND ($3::date IS NULL OR g.transaction_date <= $3::date)
		ORDER BY g.goal_transaction_code`
	return r.queryGoal(ctx, "goal transactions of goal "+goalNumber, query, goalNumber, dateRange.Start, dateRange.End)
}

// goalsInFilter lists every goal with a transaction on either ledger inside the
// filter. Status is deliberately not part of it so page offsets stay stable
// while earlier pages are being matched.
const goalsInFilter = `
	WITH goals AS (
		SELECT goal_number FROM bank_transactions
		WHERE ($1::date IS NULL OR transaction_date >= $1::date)
		  AND ($2::date IS NULL OR transaction_date <= $2::date)
		  AND ($3::text IS NULL OR goal_number = $3::text)
		UNION
		SELECT goal_number FROM goal_transactions
		WHERE ($1::date IS NULL OR transaction_date >= $1::date)
		  AND ($2::date IS NULL OR transaction_date <= $2::date)
		  AND ($3::text IS NULL OR goal_number = $3::text)
	)`

// ListGoalNumbers implements portsrepo.GoalReader
func (r *PgxReconciliationRepository) ListGoalNumbers(ctx context.Context, filter domain.GoalFilter, offset, limit int) ([]string, int, error) {
	args := []any{filter.DateRange.Start, filter.DateRange.End, filter.GoalNumber}

	var total int
	if err := r.Pool.QueryRow(ctx, goalsInFilter+` SELECT COUNT(*) FROM goals`, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count goals", err)
	}
	if offset >= total {
		return []string{}, total, nil
	}

	rows, err := r.Pool.Query(ctx, goalsInFilter+` SELECT goal_number FROM goals ORDER BY goal_number OFFSET $4 LIMIT $5`,
		append(args, offset, limit)...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list goals", err)
	}
	goals, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to scan goals", err)
	}
	return goals, total, nil
}

// FindReversalPairByTransaction implements portsrepo.ReversalReader
func (r *PgxReconciliationRepository) FindReversalPairByTransaction(ctx context.Context, bankID string) (*domain.ReversalPair, error) {
	query := `
		SELECT pair_id, goal_number, first_bank_id, second_bank_id,
		       first_previous_status, second_previous_status, linked_by, linked_at
		FROM reversal_pairs
		WHERE first_bank_id = $1 OR second_bank_id = $1`
	var m models.ReversalPair
	err := r.Pool.QueryRow(ctx, query, bankID).Scan(
		&m.PairID, &m.GoalNumber, &m.FirstBankID, &m.SecondBankID,
		&m.FirstPreviousStatus, &m.SecondPreviousStatus, &m.LinkedBy, &m.LinkedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no reversal pair for bank transaction %s", apperrors.ErrNotFound, bankID)
		}
		return nil, apperrors.NewAppError(500, "failed to find reversal pair for "+bankID, err)
	}
	pair := mapping.ToDomainReversalPair(m)
	return &pair, nil
}

// ListStatusChanges implements portsrepo.AuditReader
func (r *PgxReconciliationRepository) ListStatusChanges(ctx context.Context, side domain.Side, transactionRef string) ([]domain.StatusChange, error) {
	query := `
		SELECT audit_id, side, transaction_ref, from_status, to_status, actor, reason, changed_at
		FROM status_audit
		WHERE side = $1 AND transaction_ref = $2
		ORDER BY changed_at, audit_id`
	rows, err := r.Pool.Query(ctx, query, string(side), transactionRef)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query status history", err)
	}
	audits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StatusAudit, error) {
		var a models.StatusAudit
		err := row.Scan(&a.AuditID, &a.Side, &a.TransactionRef, &a.FromStatus, &a.ToStatus, &a.Actor, &a.Reason, &a.ChangedAt)
		return a, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan status history", err)
	}

	changes := make([]domain.StatusChange, 0, len(audits))
	for _, a := range audits {
		changes = append(changes, mapping.ToDomainStatusChange(a))
	}
	return changes, nil
}
