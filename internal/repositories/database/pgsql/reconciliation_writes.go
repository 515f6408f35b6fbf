package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

func sideTable(side domain.Side) (table, key string) {
	if side == domain.SideGoal {
		return "goal_transactions", "goal_transaction_code"
	}
	return "bank_transactions", "id"
}

// tryLockGoal takes the goal's transaction-scoped advisory lock without waiting.
func tryLockGoal(ctx context.Context, tx pgx.Tx, goalNumber string) error {
	var locked bool
	if err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1))`, goalNumber).Scan(&locked); err != nil {
		return apperrors.NewAppError(500, "failed to lock goal "+goalNumber, err)
	}
	if !locked {
		return fmt.Errorf("%w: goal %s is being reconciled elsewhere", apperrors.ErrConcurrencyConflict, goalNumber)
	}
	return nil
}

// lockGoal waits for the goal's advisory lock.
func lockGoal(ctx context.Context, tx pgx.Tx, goalNumber string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, goalNumber); err != nil {
		return apperrors.NewAppError(500, "failed to lock goal "+goalNumber, err)
	}
	return nil
}

// queueStatusChanges queues one guarded status update per change, each moving
// the row only if it still holds the status the change was computed from, plus
// its audit row.
func queueStatusChanges(gb *guardedBatch, changes []domain.StatusChange) {
	for _, ch := range changes {
		table, key := sideTable(ch.Side)
		gb.queueGuarded(fmt.Sprintf("%s transaction %s", ch.Side, ch.TransactionRef), 1, `
			UPDATE `+table+`
			SET reconciliation_status = $1, last_updated_at = $2, last_updated_by = $3
			WHERE `+key+` = $4 AND reconciliation_status = $5`,
			string(ch.To), ch.ChangedAt, ch.Actor, ch.TransactionRef, string(ch.From),
		)

		a := mapping.ToModelStatusAudit(ch)
		gb.queue(`
			INSERT INTO status_audit (side, transaction_ref, from_status, to_status, actor, reason, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.Side, a.TransactionRef, a.FromStatus, a.ToStatus, a.Actor, a.Reason, a.ChangedAt,
		)
	}
}

// queueMatch inserts a match group and attaches its members. Members already
// attached to another group or a reversal pair fail the guard.
func queueMatch(gb *guardedBatch, info domain.MatchInfo) {
	m := mapping.ToModelMatchGroup(info)
	gb.queue(`
		INSERT INTO match_groups (
			match_id, goal_number, match_type, confidence, matched_bank_ids, matched_goal_txn_ids,
			bank_total, goal_txn_total, amount_difference, date_difference_days, matched_by, matched_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.MatchID, m.GoalNumber, m.MatchType, m.Confidence, m.BankIDs, m.GoalTxnCodes,
		m.BankTotal, m.GoalTxnTotal, m.AmountDifference, m.DateDifferenceDays, m.MatchedBy, m.MatchedAt,
	)
	if len(m.BankIDs) > 0 {
		gb.queueGuarded("bank members of match "+m.MatchID, int64(len(m.BankIDs)), `
			UPDATE bank_transactions SET match_id = $1
			WHERE id = ANY($2) AND match_id IS NULL AND reversal_pair_id IS NULL`,
			m.MatchID, m.BankIDs,
		)
	}
	if len(m.GoalTxnCodes) > 0 {
		gb.queueGuarded("goal members of match "+m.MatchID, int64(len(m.GoalTxnCodes)), `
			UPDATE goal_transactions SET match_id = $1
			WHERE goal_transaction_code = ANY($2) AND match_id IS NULL`,
			m.MatchID, m.GoalTxnCodes,
		)
	}
}

// SaveGoalOutcome implements portsrepo.MatchWriter
func (r *PgxReconciliationRepository) SaveGoalOutcome(ctx context.Context, outcome domain.GoalOutcome) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := tryLockGoal(ctx, tx, outcome.GoalNumber); err != nil {
			return err
		}
		var gb guardedBatch
		for _, m := range outcome.Matches {
			queueMatch(&gb, m)
		}
		queueStatusChanges(&gb, outcome.Changes)
		return gb.send(ctx, tx)
	})
}

// SaveManualMatch implements portsrepo.MatchWriter
func (r *PgxReconciliationRepository) SaveManualMatch(ctx context.Context, match domain.MatchInfo, changes []domain.StatusChange) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockGoal(ctx, tx, match.GoalNumber); err != nil {
			return err
		}
		var gb guardedBatch
		queueMatch(&gb, match)
		queueStatusChanges(&gb, changes)
		return gb.send(ctx, tx)
	})
}

// RemoveMatches implements portsrepo.MatchWriter
func (r *PgxReconciliationRepository) RemoveMatches(ctx context.Context, matchIDs []string, changes []domain.StatusChange) error {
	if len(matchIDs) == 0 {
		return nil
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var gb guardedBatch
		gb.queue(`UPDATE bank_transactions SET match_id = NULL WHERE match_id = ANY($1)`, matchIDs)
		gb.queue(`UPDATE goal_transactions SET match_id = NULL WHERE match_id = ANY($1)`, matchIDs)
		queueStatusChanges(&gb, changes)
		gb.queueGuarded("match groups", int64(len(matchIDs)), `DELETE FROM match_groups WHERE match_id = ANY($1)`, matchIDs)
		return gb.send(ctx, tx)
	})
}

// SaveReviews implements portsrepo.ReviewWriter
func (r *PgxReconciliationRepository) SaveReviews(ctx context.Context, updates []domain.ReviewUpdate, changes []domain.StatusChange) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var gb guardedBatch
		queueReviewUpdates(&gb, updates)
		queueStatusChanges(&gb, changes)
		return gb.send(ctx, tx)
	})
}

// queueReviewUpdates writes review columns. A row resolved since it was read
// fails the guard, so tags never land on APPROVED or REJECTED rows.
func queueReviewUpdates(gb *guardedBatch, updates []domain.ReviewUpdate) {
	for _, u := range updates {
		table, key := sideTable(u.Side)
		gb.queueGuarded(fmt.Sprintf("%s transaction %s", u.Side, u.TransactionRef), 1, `
			UPDATE `+table+`
			SET review_tag = $1, review_notes = $2, reviewed_by = $3, reviewed_at = $4,
			    last_updated_at = $4, last_updated_by = $3
			WHERE `+key+` = $5 AND reconciliation_status NOT IN ('APPROVED', 'REJECTED')`,
			string(u.Tag), u.Notes, u.ReviewedBy, u.ReviewedAt, u.TransactionRef,
		)
	}
}

// SaveReversalPair implements portsrepo.ReversalWriter
func (r *PgxReconciliationRepository) SaveReversalPair(ctx context.Context, pair domain.ReversalPair, changes []domain.StatusChange) error {
	m := mapping.ToModelReversalPair(pair)
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockGoal(ctx, tx, m.GoalNumber); err != nil {
			return err
		}
		var gb guardedBatch
		gb.queue(`
			INSERT INTO reversal_pairs (
				pair_id, goal_number, first_bank_id, second_bank_id,
				first_previous_status, second_previous_status, linked_by, linked_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.PairID, m.GoalNumber, m.FirstBankID, m.SecondBankID,
			m.FirstPreviousStatus, m.SecondPreviousStatus, m.LinkedBy, m.LinkedAt,
		)
		gb.queueGuarded("reversal pair members", 2, `
			UPDATE bank_transactions SET reversal_pair_id = $1
			WHERE id IN ($2, $3) AND reversal_pair_id IS NULL AND match_id IS NULL`,
			m.PairID, m.FirstBankID, m.SecondBankID,
		)
		queueStatusChanges(&gb, changes)
		return gb.send(ctx, tx)
	})
}

// DeleteReversalPair implements portsrepo.ReversalWriter
func (r *PgxReconciliationRepository) DeleteReversalPair(ctx context.Context, pairID string, changes []domain.StatusChange) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var gb guardedBatch
		gb.queueGuarded("reversal pair "+pairID, 2, `UPDATE bank_transactions SET reversal_pair_id = NULL WHERE reversal_pair_id = $1`, pairID)
		queueStatusChanges(&gb, changes)
		gb.queueGuarded("reversal pair "+pairID, 1, `DELETE FROM reversal_pairs WHERE pair_id = $1`, pairID)
		return gb.send(ctx, tx)
	})
}
