package mapping

import (
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/models"
)

func toDomainFunds(m models.FundAmounts) domain.FundBreakdown {
	return domain.FundBreakdown{XUMMF: m.XUMMF, XUBF: m.XUBF, XUDEF: m.XUDEF, XUREF: m.XUREF}
}

// toDomainReview keeps unknown stored tags verbatim so old rows stay readable.
func toDomainReview(m models.ReviewColumns) domain.ReviewFields {
	var r domain.ReviewFields
	if m.ReviewTag != nil {
		tag, err := domain.ParseReviewTag(*m.ReviewTag)
		if err != nil {
			tag = domain.ReviewTag(*m.ReviewTag)
		}
		r.ReviewTag = &tag
	}
	if m.ReviewNotes != nil {
		r.ReviewNotes = *m.ReviewNotes
	}
	if m.ReviewedBy != nil {
		r.ReviewedBy = *m.ReviewedBy
	}
	r.ReviewedAt = m.ReviewedAt
	return r
}

// ToDomainMatchInfo converts a match_groups row to a domain MatchInfo
func ToDomainMatchInfo(m models.MatchGroup) domain.MatchInfo {
	return domain.MatchInfo{
		MatchID:            m.MatchID,
		GoalNumber:         m.GoalNumber,
		MatchType:          domain.MatchType(m.MatchType),
		Confidence:         m.Confidence,
		MatchedBankIDs:     m.BankIDs,
		MatchedGoalTxnIDs:  m.GoalTxnCodes,
		BankTotal:          m.BankTotal,
		GoalTxnTotal:       m.GoalTxnTotal,
		AmountDifference:   m.AmountDifference,
		DateDifferenceDays: m.DateDifferenceDays,
		MatchedBy:          m.MatchedBy,
		MatchedAt:          m.MatchedAt,
	}
}

// ToModelMatchGroup converts a domain MatchInfo to a match_groups row
func ToModelMatchGroup(d domain.MatchInfo) models.MatchGroup {
	return models.MatchGroup{
		MatchID:            d.MatchID,
		GoalNumber:         d.GoalNumber,
		MatchType:          string(d.MatchType),
		Confidence:         d.Confidence,
		BankIDs:            d.MatchedBankIDs,
		GoalTxnCodes:       d.MatchedGoalTxnIDs,
		BankTotal:          d.BankTotal,
		GoalTxnTotal:       d.GoalTxnTotal,
		AmountDifference:   d.AmountDifference,
		DateDifferenceDays: d.DateDifferenceDays,
		MatchedBy:          d.MatchedBy,
		MatchedAt:          d.MatchedAt,
	}
}

func toDomainMatchPtr(m *models.MatchGroup) *domain.MatchInfo {
	if m == nil {
		return nil
	}
	info := ToDomainMatchInfo(*m)
	return &info
}

// ToDomainBankTransaction converts a bank_transactions row and its optional match group.
func ToDomainBankTransaction(m models.BankTransaction, match *models.MatchGroup) domain.BankTransaction {
	return domain.BankTransaction{
		ID:                   m.ID,
		GoalNumber:           m.GoalNumber,
		AccountNumber:        m.AccountNumber,
		SourceTransactionID:  m.SourceTransactionID,
		TransactionDate:      m.TransactionDate,
		TransactionType:      domain.TransactionType(m.TransactionType),
		TotalAmount:          m.TotalAmount,
		FundAmounts:          toDomainFunds(m.FundAmounts),
		ReconciliationStatus: domain.ReconciliationStatus(m.ReconciliationStatus),
		MatchInfo:            toDomainMatchPtr(match),
		ReversalPairID:       m.ReversalPairID,
		ReviewFields:         toDomainReview(m.ReviewColumns),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGoalTransaction converts a goal_transactions row and its optional match group.
func ToDomainGoalTransaction(m models.GoalTransaction, match *models.MatchGroup) domain.GoalTransaction {
	fundIDs := m.FundTransactionIDs
	if fundIDs == nil {
		fundIDs = []string{}
	}
	return domain.GoalTransaction{
		GoalTransactionCode:  m.GoalTransactionCode,
		GoalNumber:           m.GoalNumber,
		AccountNumber:        m.AccountNumber,
		TransactionID:        m.TransactionID,
		TransactionDate:      m.TransactionDate,
		TransactionType:      domain.TransactionType(m.TransactionType),
		TotalAmount:          m.TotalAmount,
		FundAmounts:          toDomainFunds(m.FundAmounts),
		FundTransactionIDs:   fundIDs,
		ReconciliationStatus: domain.ReconciliationStatus(m.ReconciliationStatus),
		MatchInfo:            toDomainMatchPtr(match),
		ReviewFields:         toDomainReview(m.ReviewColumns),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainReversalPair converts a reversal_pairs row
func ToDomainReversalPair(m models.ReversalPair) domain.ReversalPair {
	return domain.ReversalPair{
		PairID:               m.PairID,
		GoalNumber:           m.GoalNumber,
		FirstBankID:          m.FirstBankID,
		SecondBankID:         m.SecondBankID,
		FirstPreviousStatus:  domain.ReconciliationStatus(m.FirstPreviousStatus),
		SecondPreviousStatus: domain.ReconciliationStatus(m.SecondPreviousStatus),
		LinkedBy:             m.LinkedBy,
		LinkedAt:             m.LinkedAt,
	}
}

// ToModelReversalPair converts a domain ReversalPair
func ToModelReversalPair(d domain.ReversalPair) models.ReversalPair {
	return models.ReversalPair{
		PairID:               d.PairID,
		GoalNumber:           d.GoalNumber,
		FirstBankID:          d.FirstBankID,
		SecondBankID:         d.SecondBankID,
		FirstPreviousStatus:  string(d.FirstPreviousStatus),
		SecondPreviousStatus: string(d.SecondPreviousStatus),
		LinkedBy:             d.LinkedBy,
		LinkedAt:             d.LinkedAt,
	}
}

// ToModelStatusAudit converts a domain StatusChange to a status_audit row
func ToModelStatusAudit(d domain.StatusChange) models.StatusAudit {
	return models.StatusAudit{
		Side:           string(d.Side),
		TransactionRef: d.TransactionRef,
		FromStatus:     string(d.From),
		ToStatus:       string(d.To),
		Actor:          d.Actor,
		Reason:         d.Reason,
		ChangedAt:      d.ChangedAt,
	}
}

// ToDomainStatusChange converts a status_audit row
func ToDomainStatusChange(m models.StatusAudit) domain.StatusChange {
	return domain.StatusChange{
		Side:           domain.Side(m.Side),
		TransactionRef: m.TransactionRef,
		From:           domain.ReconciliationStatus(m.FromStatus),
		To:             domain.ReconciliationStatus(m.ToStatus),
		Actor:          m.Actor,
		Reason:         m.Reason,
		ChangedAt:      m.ChangedAt,
	}
}
