package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction. Rolling back a finished transaction is a no-op.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func (r *BaseRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// rowGuard is the row count a queued statement must produce. rows == 0 means unchecked.
type rowGuard struct {
	what string
	rows int64
}

// guardedBatch is a pgx.Batch whose statements may be required to touch an
// exact number of rows. A guarded statement that falls short means another
// writer moved the rows first.
type guardedBatch struct {
	batch  pgx.Batch
	guards []rowGuard
}

func (g *guardedBatch) queue(sql string, args ...any) {
	g.batch.Queue(sql, args...)
	g.guards = append(g.guards, rowGuard{})
}

func (g *guardedBatch) queueGuarded(what string, rows int64, sql string, args ...any) {
	g.batch.Queue(sql, args...)
	g.guards = append(g.guards, rowGuard{what: what, rows: rows})
}

func (g *guardedBatch) len() int {
	return len(g.guards)
}

func (g *guardedBatch) send(ctx context.Context, tx pgx.Tx) error {
	if g.len() == 0 {
		return nil
	}
	br := tx.SendBatch(ctx, &g.batch)
	for _, guard := range g.guards {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return apperrors.NewAppError(500, "failed to execute batch statement", err)
		}
		if guard.rows > 0 && tag.RowsAffected() != guard.rows {
			br.Close()
			return fmt.Errorf("%w: %s was modified concurrently", apperrors.ErrConcurrencyConflict, guard.what)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close batch", err)
	}
	return nil
}
