package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// Now is the clock used for audit timestamps. Defaults to time.Now in UTC.
	Now func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// requireActor rejects calls without an authenticated actor.
func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return fmt.Errorf("%w: actor is required", apperrors.ErrValidation)
	}
	return nil
}

// changeSet accumulates validated status transitions for one atomic write.
// Self-transitions are dropped.
type changeSet struct {
	actor   string
	at      time.Time
	changes []domain.StatusChange
}

func newChangeSet(actor string, at time.Time) *changeSet {
	return &changeSet{actor: actor, at: at}
}

func (c *changeSet) add(side domain.Side, ref string, from, to domain.ReconciliationStatus, reason string) error {
	if from == to {
		return nil
	}
	change, err := domain.NewStatusChange(side, ref, from, to, c.actor, reason, c.at)
	if err != nil {
		return err
	}
	c.changes = append(c.changes, change)
	return nil
}

// uniqueIDs trims, drops empties and deduplicates ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// missingIDs returns the requested ids absent from found.
func missingIDs(requested []string, found map[string]bool) []string {
	var missing []string
	for _, id := range requested {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
