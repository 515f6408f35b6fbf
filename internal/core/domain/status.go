package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
)

// ReconciliationStatus is the matching/review state of a bank or goal transaction.
type ReconciliationStatus string

const (
	StatusPending          ReconciliationStatus = "PENDING"
	StatusMatched          ReconciliationStatus = "MATCHED"
	StatusAutoApproved     ReconciliationStatus = "AUTO_APPROVED"
	StatusVarianceDetected ReconciliationStatus = "VARIANCE_DETECTED"
	StatusManualReview     ReconciliationStatus = "MANUAL_REVIEW"
	StatusMissingInFund    ReconciliationStatus = "MISSING_IN_FUND"
	StatusApproved         ReconciliationStatus = "APPROVED"
	StatusRejected         ReconciliationStatus = "REJECTED"
)

// SystemActor is recorded for transitions produced by the matching engine.
const SystemActor = "system"

// IsValid reports whether s is a known status.
func (s ReconciliationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusMatched, StatusAutoApproved, StatusVarianceDetected,
		StatusManualReview, StatusMissingInFund, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s ReconciliationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// isIntermediate covers the states produced by matching or by a human flag.
func (s ReconciliationStatus) isIntermediate() bool {
	switch s {
	case StatusMatched, StatusAutoApproved, StatusVarianceDetected, StatusManualReview, StatusMissingInFund:
		return true
	}
	return false
}

// IsUnresolved reports whether the matcher may still consider a transaction in status s.
func (s ReconciliationStatus) IsUnresolved() bool {
	return s == StatusPending || s == StatusMissingInFund
}

// CanTransition reports whether the state machine allows moving from one status to another.
//
//	PENDING      -> intermediate
//	intermediate -> intermediate | PENDING | APPROVED | REJECTED
//	APPROVED, REJECTED are sinks
func CanTransition(from, to ReconciliationStatus) bool {
	if !from.IsValid() || !to.IsValid() || from.IsTerminal() {
		return false
	}
	if from == StatusPending {
		return to.isIntermediate()
	}
	return to.isIntermediate() || to == StatusPending || to.IsTerminal()
}

// Side distinguishes the two ledgers.
type Side string

const (
	SideBank Side = "BANK"
	SideGoal Side = "GOAL"
)

// ParseSide normalises a side string.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBank:
		return SideBank, nil
	case SideGoal:
		return SideGoal, nil
	}
	return "", fmt.Errorf("%w: unknown transaction side %q", apperrors.ErrValidation, s)
}

// StatusChange is one audited status transition.
type StatusChange struct {
	Side           Side                 `json:"side"`
	TransactionRef string               `json:"transactionRef"` // bank id or goal transaction code
	From           ReconciliationStatus `json:"from"`
	To             ReconciliationStatus `json:"to"`
	Actor          string               `json:"actor"`
	Reason         string               `json:"reason"`
	ChangedAt      time.Time            `json:"changedAt"`
}

// NewStatusChange validates a transition and returns the audit record for it.
// Terminal targets can only be reached by a human actor.
func NewStatusChange(side Side, ref string, from, to ReconciliationStatus, actor, reason string, at time.Time) (StatusChange, error) {
	if actor == "" {
		return StatusChange{}, fmt.Errorf("%w: actor is required for status changes", apperrors.ErrValidation)
	}
	if !CanTransition(from, to) {
		return StatusChange{}, fmt.Errorf("%w: %s %s cannot move from %s to %s", apperrors.ErrInvalidTransition, side, ref, from, to)
	}
	if to.IsTerminal() && actor == SystemActor {
		return StatusChange{}, fmt.Errorf("%w: %s is a reviewer-only status", apperrors.ErrInvalidTransition, to)
	}
	return StatusChange{
		Side:           side,
		TransactionRef: ref,
		From:           from,
		To:             to,
		Actor:          actor,
		Reason:         reason,
		ChangedAt:      at,
	}, nil
}
