package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTx answers SendBatch with fixed command tags, one per queued statement.
type stubTx struct {
	pgx.Tx
	tags []string
	sent *pgx.Batch
}

func (t *stubTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	t.sent = b
	return &stubBatchResults{tags: t.tags}
}

type stubBatchResults struct {
	pgx.BatchResults
	tags []string
	next int
}

func (r *stubBatchResults) Exec() (pgconn.CommandTag, error) {
	tag := r.tags[r.next]
	r.next++
	return pgconn.NewCommandTag(tag), nil
}

func (r *stubBatchResults) Close() error { return nil }

func reviewUpdate(side domain.Side, ref string) domain.ReviewUpdate {
	return domain.ReviewUpdate{
		Side:           side,
		TransactionRef: ref,
		Tag:            domain.TagNoActionNeeded,
		ReviewedBy:     "alice",
		ReviewedAt:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestQueueReviewUpdates_SkipsResolvedRows(t *testing.T) {
	var gb guardedBatch
	queueReviewUpdates(&gb, []domain.ReviewUpdate{
		reviewUpdate(domain.SideBank, "b1"),
		reviewUpdate(domain.SideGoal, "g1"),
	})

	require.Len(t, gb.batch.QueuedQueries, 2)
	assert.Contains(t, gb.batch.QueuedQueries[0].SQL, "UPDATE bank_transactions")
	assert.Contains(t, gb.batch.QueuedQueries[1].SQL, "UPDATE goal_transactions")
	for _, q := range gb.batch.QueuedQueries {
		assert.Contains(t, q.SQL, "reconciliation_status NOT IN ('APPROVED', 'REJECTED')")
	}
}

func TestSendReviews_RowResolvedConcurrently(t *testing.T) {
	var gb guardedBatch
	queueReviewUpdates(&gb, []domain.ReviewUpdate{
		reviewUpdate(domain.SideBank, "b1"),
		reviewUpdate(domain.SideBank, "b2"),
	})

	// b2 was approved between the read and the write, so its update matches nothing.
	tx := &stubTx{tags: []string{"UPDATE 1", "UPDATE 0"}}
	err := gb.send(context.Background(), tx)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
	assert.Contains(t, err.Error(), "b2")
	assert.Same(t, &gb.batch, tx.sent)
}

func TestSendReviews_AllRowsWritten(t *testing.T) {
	var gb guardedBatch
	queueReviewUpdates(&gb, []domain.ReviewUpdate{reviewUpdate(domain.SideGoal, "g1")})

	err := gb.send(context.Background(), &stubTx{tags: []string{"UPDATE 1"}})

	assert.NoError(t, err)
}
