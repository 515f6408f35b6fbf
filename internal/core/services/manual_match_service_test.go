package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/core/matching"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/core/services"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
)

type ManualMatchServiceTestSuite struct {
	suite.Suite
	repo    *MockReconciliationRepository
	service portssvc.ManualMatchSvcFacade
}

func (suite *ManualMatchServiceTestSuite) SetupTest() {
	suite.repo = new(MockReconciliationRepository)
	suite.service = services.NewManualMatchService(suite.repo, matching.DefaultTolerance(), fixedTime)
}

func (suite *ManualMatchServiceTestSuite) TestCreateManualMatch_Success() {
	ctx := context.Background()
	b1 := bankTxn("b1", "G1", 300000, on(0), "")
	b2 := bankTxn("b2", "G1", 200000, on(1), "")
	b2.ReconciliationStatus = domain.StatusMissingInFund
	g1 := goalTxn("g1", "G1", 499500, on(4), "")
	g1.ReconciliationStatus = domain.StatusManualReview

	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b2", "b1"}).Return([]domain.BankTransaction{b2, b1}, nil).Once()
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"g1"}).Return([]domain.GoalTransaction{g1}, nil).Once()

	var saved domain.MatchInfo
	var changes []domain.StatusChange
	suite.repo.On("SaveManualMatch", ctx, mock.AnythingOfType("domain.MatchInfo"), mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(domain.MatchInfo)
		changes = args.Get(2).([]domain.StatusChange)
	}).Return(nil).Once()

	req := dto.ManualMatchRequest{BankIDs: []string{"b2", " b1 ", "b2"}, GoalTxnCodes: []string{"g1"}}
	res, err := suite.service.CreateManualMatch(ctx, req, "alice")

	suite.Require().NoError(err)
	suite.Equal(saved.MatchID, res.MatchID)
	suite.Equal(2, res.MatchedBankCount)
	suite.Equal(1, res.MatchedGoalCount)
	suite.True(res.BankTotal.Equal(decimalFromInt(500000)))
	suite.True(res.AmountDifference.Equal(decimalFromInt(500)))
	suite.True(res.WithinTolerance)

	suite.Equal(domain.MatchManual, saved.MatchType)
	suite.Equal([]string{"b1", "b2"}, saved.MatchedBankIDs)
	suite.Equal("alice", saved.MatchedBy)
	suite.Equal(fixedNow, saved.MatchedAt)
	suite.Equal(4, saved.DateDifferenceDays)

	suite.Require().Len(changes, 3)
	for _, ch := range changes {
		suite.Equal(domain.StatusMatched, ch.To)
		suite.Equal("alice", ch.Actor)
	}
	g1Change, ok := changeFor(changes, domain.SideGoal, "g1")
	suite.Require().True(ok)
	suite.Equal(domain.StatusManualReview, g1Change.From)
}

func (suite *ManualMatchServiceTestSuite) TestCreateManualMatch_OutsideToleranceStillSaved() {
	ctx := context.Background()
	b1 := bankTxn("b1", "G1", 500000, on(0), "")
	g1 := goalTxn("g1", "G1", 100000, on(0), "")
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b1"}).Return([]domain.BankTransaction{b1}, nil).Once()
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"g1"}).Return([]domain.GoalTransaction{g1}, nil).Once()
	suite.repo.On("SaveManualMatch", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	res, err := suite.service.CreateManualMatch(ctx, dto.ManualMatchRequest{BankIDs: []string{"b1"}, GoalTxnCodes: []string{"g1"}}, "alice")

	suite.Require().NoError(err)
	suite.False(res.WithinTolerance)
	suite.True(res.AmountDifference.Equal(decimalFromInt(400000)))
}

func (suite *ManualMatchServiceTestSuite) TestCreateManualMatch_Rejections() {
	ctx := context.Background()
	b1 := bankTxn("b1", "G1", 500000, on(0), "")
	gOther := goalTxn("g2", "G2", 500000, on(0), "")
	prior, gPrior := matched(bankTxn("b3", "G1", 100, on(0), ""), goalTxn("g3", "G1", 100, on(0), ""), domain.MatchExact)
	approved := goalTxn("g4", "G1", 500000, on(0), "")
	approved.ReconciliationStatus = domain.StatusApproved

	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b1"}).Return([]domain.BankTransaction{b1}, nil)
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b3"}).Return([]domain.BankTransaction{prior}, nil)
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"g2"}).Return([]domain.GoalTransaction{gOther}, nil)
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"g3"}).Return([]domain.GoalTransaction{gPrior}, nil)
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"g4"}).Return([]domain.GoalTransaction{approved}, nil)
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"gX"}).Return([]domain.GoalTransaction{}, nil)

	tests := []struct {
		name    string
		req     dto.ManualMatchRequest
		actor   string
		wantErr []error
	}{
		{"no actor", dto.ManualMatchRequest{BankIDs: []string{"b1"}, GoalTxnCodes: []string{"g2"}}, "", []error{apperrors.ErrValidation}},
		{"no goal side", dto.ManualMatchRequest{BankIDs: []string{"b1"}, GoalTxnCodes: []string{" "}}, "alice", []error{apperrors.ErrValidation}},
		{"mixed goals", dto.ManualMatchRequest{BankIDs: []string{"b1"}, GoalTxnCodes: []string{"g2"}}, "alice", []error{apperrors.ErrValidation, services.ErrMixedGoals}},
		{"already matched", dto.ManualMatchRequest{BankIDs: []string{"b3"}, GoalTxnCodes: []string{"g3"}}, "alice", []error{apperrors.ErrInvalidTransition, services.ErrAlreadyMatched}},
		{"terminal goal transaction", dto.ManualMatchRequest{BankIDs: []string{"b1"}, GoalTxnCodes: []string{"g4"}}, "alice", []error{apperrors.ErrInvalidTransition}},
		{"missing goal transaction", dto.ManualMatchRequest{BankIDs: []string{"b1"}, GoalTxnCodes: []string{"gX"}}, "alice", []error{apperrors.ErrNotFound}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.service.CreateManualMatch(ctx, tc.req, tc.actor)
			suite.Require().Error(err)
			for _, want := range tc.wantErr {
				suite.ErrorIs(err, want)
			}
		})
	}
	suite.repo.AssertNotCalled(suite.T(), "SaveManualMatch", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ManualMatchServiceTestSuite) TestRemoveManualMatch_ReleasesWholeGroup() {
	ctx := context.Background()
	info := &domain.MatchInfo{
		MatchID:           "m1",
		GoalNumber:        "G1",
		MatchType:         domain.MatchSplitBankToFund,
		MatchedBankIDs:    []string{"b1", "b2"},
		MatchedGoalTxnIDs: []string{"g1"},
	}
	b1 := bankTxn("b1", "G1", 300000, on(0), "")
	b2 := bankTxn("b2", "G1", 200000, on(0), "")
	g1 := goalTxn("g1", "G1", 500000, on(0), "")
	b1.MatchInfo, b2.MatchInfo, g1.MatchInfo = info, info, info
	b1.ReconciliationStatus, b2.ReconciliationStatus = domain.StatusAutoApproved, domain.StatusAutoApproved
	g1.ReconciliationStatus = domain.StatusAutoApproved

	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b1"}).Return([]domain.BankTransaction{b1}, nil).Once()
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b1", "b2"}).Return([]domain.BankTransaction{b1, b2}, nil).Once()
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"g1"}).Return([]domain.GoalTransaction{g1}, nil).Once()

	var changes []domain.StatusChange
	suite.repo.On("RemoveMatches", ctx, []string{"m1"}, mock.Anything).Run(func(args mock.Arguments) {
		changes = args.Get(2).([]domain.StatusChange)
	}).Return(nil).Once()

	res, err := suite.service.RemoveManualMatch(ctx, dto.RemoveMatchRequest{BankIDs: []string{"b1"}}, "bob")

	suite.Require().NoError(err)
	suite.Equal(3, res.Unmatched)
	suite.Require().Len(changes, 3)
	for _, ch := range changes {
		suite.Equal(domain.StatusPending, ch.To)
		suite.Equal("bob", ch.Actor)
	}
	suite.repo.AssertExpectations(suite.T())
}

func (suite *ManualMatchServiceTestSuite) TestRemoveManualMatch_NotMatched() {
	ctx := context.Background()
	b1 := bankTxn("b1", "G1", 300000, on(0), "")
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b1"}).Return([]domain.BankTransaction{b1}, nil).Once()

	_, err := suite.service.RemoveManualMatch(ctx, dto.RemoveMatchRequest{BankIDs: []string{"b1"}}, "bob")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrNotMatched)
}

func (suite *ManualMatchServiceTestSuite) TestRemoveManualMatch_TerminalMemberFails() {
	ctx := context.Background()
	b1, g1 := matched(bankTxn("b1", "G1", 300000, on(0), ""), goalTxn("g1", "G1", 300000, on(0), ""), domain.MatchManual)
	g1.ReconciliationStatus = domain.StatusApproved
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"b1"}).Return([]domain.BankTransaction{b1}, nil).Twice()
	suite.repo.On("FindGoalTransactionsByCodes", ctx, []string{"g1"}).Return([]domain.GoalTransaction{g1}, nil).Once()

	_, err := suite.service.RemoveManualMatch(ctx, dto.RemoveMatchRequest{BankIDs: []string{"b1"}}, "bob")

	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.repo.AssertNotCalled(suite.T(), "RemoveMatches", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ManualMatchServiceTestSuite) TestRemoveManualMatch_MissingID() {
	ctx := context.Background()
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"nope"}).Return([]domain.BankTransaction{}, nil).Once()

	_, err := suite.service.RemoveManualMatch(ctx, dto.RemoveMatchRequest{BankIDs: []string{"nope"}}, "bob")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestManualMatchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ManualMatchServiceTestSuite))
}
