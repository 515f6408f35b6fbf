package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
)

// ReviewTag classifies an unresolved or variance transaction.
type ReviewTag string

const (
	TagDuplicateTransaction ReviewTag = "DUPLICATE_TRANSACTION"
	TagNoActionNeeded       ReviewTag = "NO_ACTION_NEEDED"
	TagMissingInBank        ReviewTag = "MISSING_IN_BANK"
	TagMissingInFund        ReviewTag = "MISSING_IN_FUND"
	TagTimingDifference     ReviewTag = "TIMING_DIFFERENCE"
	TagAmountDiscrepancy    ReviewTag = "AMOUNT_DISCREPANCY"
	TagDataEntryError       ReviewTag = "DATA_ENTRY_ERROR"
	TagUnderInvestigation   ReviewTag = "UNDER_INVESTIGATION"
	TagReversalNetted       ReviewTag = "REVERSAL_NETTED"
	TagNeedsInvestigation   ReviewTag = "NEEDS_INVESTIGATION"
)

// ReviewTagSetVersion is bumped whenever the canonical tag set changes.
const ReviewTagSetVersion = 1

// ReviewTags is the canonical tag set.
var ReviewTags = []ReviewTag{
	TagDuplicateTransaction,
	TagNoActionNeeded,
	TagMissingInBank,
	TagMissingInFund,
	TagTimingDifference,
	TagAmountDiscrepancy,
	TagDataEntryError,
	TagUnderInvestigation,
	TagReversalNetted,
	TagNeedsInvestigation,
}

// legacyTagAliases maps spellings still sent by older clients.
var legacyTagAliases = map[string]ReviewTag{
	"AMOUNT_MISMATCH": TagAmountDiscrepancy,
}

// LegacyTagAliases returns a copy of the accepted legacy spellings.
func LegacyTagAliases() map[string]ReviewTag {
	out := make(map[string]ReviewTag, len(legacyTagAliases))
	for k, v := range legacyTagAliases {
		out[k] = v
	}
	return out
}

// ParseReviewTag resolves s to a canonical tag, accepting legacy aliases.
func ParseReviewTag(s string) (ReviewTag, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := legacyTagAliases[norm]; ok {
		return alias, nil
	}
	for _, tag := range ReviewTags {
		if string(tag) == norm {
			return tag, nil
		}
	}
	return "", fmt.Errorf("%w: unknown review tag %q", apperrors.ErrValidation, s)
}

// FlagsForManualReview reports whether applying the tag moves the transaction into MANUAL_REVIEW.
// Every other tag is a classification on top of the current status.
func (t ReviewTag) FlagsForManualReview() bool {
	return t == TagNeedsInvestigation || t == TagUnderInvestigation
}

// ReviewUpdate is one tag write produced by the review workflow.
type ReviewUpdate struct {
	Side           Side
	TransactionRef string
	Tag            ReviewTag
	Notes          string
	ReviewedBy     string
	ReviewedAt     time.Time
}

// ReviewDecision is the human-only resolution of a transaction.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "APPROVED"
	DecisionRejected ReviewDecision = "REJECTED"
)

// Status maps the decision onto its terminal status.
func (d ReviewDecision) Status() (ReconciliationStatus, error) {
	switch d {
	case DecisionApproved:
		return StatusApproved, nil
	case DecisionRejected:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: unknown review decision %q", apperrors.ErrValidation, d)
}
