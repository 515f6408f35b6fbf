package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/fund_reconciliation/internal/apperrors"
	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/core/services"
)

type ReversalServiceTestSuite struct {
	suite.Suite
	repo    *MockReconciliationRepository
	service portssvc.ReversalSvcFacade

	deposit    domain.BankTransaction
	withdrawal domain.BankTransaction
}

func (suite *ReversalServiceTestSuite) SetupTest() {
	suite.repo = new(MockReconciliationRepository)
	suite.service = services.NewReversalService(suite.repo, 30, fixedTime)

	suite.deposit = bankTxn("dep", "G1", 500000, on(1), "")
	suite.withdrawal = bankTxn("wd", "G1", 500000, on(3), "")
	suite.withdrawal.TransactionType = domain.Withdrawal
}

func (suite *ReversalServiceTestSuite) TestFindReversalCandidates() {
	ctx := context.Background()
	sameDirection := bankTxn("dep2", "G1", 500000, on(2), "")
	otherAmount := bankTxn("wd2", "G1", 400000, on(1), "")
	otherAmount.TransactionType = domain.Withdrawal
	negated := bankTxn("neg", "G1", 0, on(5), "")
	negated.TotalAmount = decimal.NewFromInt(-500000)
	farther := suite.withdrawal
	farther.ID = "wd-far"
	farther.TransactionDate = on(9)
	resolved := suite.withdrawal
	resolved.ID = "wd-matched"
	resolved.ReconciliationStatus = domain.StatusMatched

	suite.repo.On("FindBankTransactionByID", ctx, "dep").Return(&suite.deposit, nil).Once()
	suite.repo.On("ListBankTransactionsByGoal", ctx, "G1", mock.MatchedBy(func(r domain.DateRange) bool {
		return r.Start != nil && r.End != nil && r.Start.Equal(on(1-30)) && r.End.Equal(on(1+30))
	})).Return([]domain.BankTransaction{suite.deposit, farther, sameDirection, otherAmount, negated, resolved, suite.withdrawal}, nil).Once()

	res, err := suite.service.FindReversalCandidates(ctx, "dep", nil)

	suite.Require().NoError(err)
	suite.Equal("dep", res.SourceTransaction.ID)
	ids := make([]string, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		ids = append(ids, c.Transaction.ID)
	}
	suite.Equal([]string{"wd", "neg", "wd-far"}, ids)
	suite.Equal(2, res.Candidates[0].DaysApart)
}

func (suite *ReversalServiceTestSuite) TestFindReversalCandidates_SourceMustBeUnresolved() {
	ctx := context.Background()
	suite.deposit.ReconciliationStatus = domain.StatusAutoApproved
	suite.repo.On("FindBankTransactionByID", ctx, "dep").Return(&suite.deposit, nil).Once()

	_, err := suite.service.FindReversalCandidates(ctx, "dep", nil)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrSourceResolved)
}

// Deposit and withdrawal of the same amount two days apart net to zero:
// linking them approves both and either side reports the other as partner.
func (suite *ReversalServiceTestSuite) TestLinkThenGetPairInfo() {
	ctx := context.Background()
	suite.repo.On("FindBankTransactionByID", ctx, "dep").Return(&suite.deposit, nil).Once()
	suite.repo.On("FindBankTransactionByID", ctx, "wd").Return(&suite.withdrawal, nil).Once()

	var savedPair domain.ReversalPair
	var changes []domain.StatusChange
	suite.repo.On("SaveReversalPair", ctx, mock.AnythingOfType("domain.ReversalPair"), mock.Anything).Run(func(args mock.Arguments) {
		savedPair = args.Get(1).(domain.ReversalPair)
		changes = args.Get(2).([]domain.StatusChange)
	}).Return(nil).Once()

	pair, err := suite.service.LinkReversal(ctx, "dep", "wd", "alice")

	suite.Require().NoError(err)
	suite.Equal(savedPair, *pair)
	suite.Equal(domain.StatusPending, pair.FirstPreviousStatus)
	suite.Equal(domain.StatusPending, pair.SecondPreviousStatus)
	suite.Equal("alice", pair.LinkedBy)
	suite.Require().Len(changes, 2)
	for _, ch := range changes {
		suite.Equal(domain.StatusAutoApproved, ch.To)
	}

	linkedDep, linkedWd := suite.deposit, suite.withdrawal
	linkedDep.ReversalPairID, linkedWd.ReversalPairID = &pair.PairID, &pair.PairID
	linkedDep.ReconciliationStatus, linkedWd.ReconciliationStatus = domain.StatusAutoApproved, domain.StatusAutoApproved
	for _, id := range []string{"dep", "wd"} {
		suite.repo.On("FindReversalPairByTransaction", ctx, id).Return(pair, nil).Once()
	}
	suite.repo.On("FindBankTransactionByID", ctx, "dep").Return(&linkedDep, nil).Twice()
	suite.repo.On("FindBankTransactionByID", ctx, "wd").Return(&linkedWd, nil).Twice()

	info, err := suite.service.GetReversalPairInfo(ctx, "wd")
	suite.Require().NoError(err)
	suite.Equal("wd", info.Transaction.ID)
	suite.Equal("dep", info.Partner.ID)

	info, err = suite.service.GetReversalPairInfo(ctx, "dep")
	suite.Require().NoError(err)
	suite.Equal("wd", info.Partner.ID)
	suite.Equal(pair.PairID, info.PairID)
}

func (suite *ReversalServiceTestSuite) TestLinkReversal_Rejections() {
	ctx := context.Background()

	_, err := suite.service.LinkReversal(ctx, "dep", "dep", "alice")
	suite.ErrorIs(err, services.ErrSameTransaction)

	otherGoal := suite.withdrawal
	otherGoal.ID, otherGoal.GoalNumber = "wd-g2", "G2"
	suite.repo.On("FindBankTransactionByID", ctx, "dep").Return(&suite.deposit, nil)
	suite.repo.On("FindBankTransactionByID", ctx, "wd-g2").Return(&otherGoal, nil).Once()
	_, err = suite.service.LinkReversal(ctx, "dep", "wd-g2", "alice")
	suite.ErrorIs(err, services.ErrMixedGoals)

	sameType := bankTxn("dep2", "G1", 500000, on(2), "")
	suite.repo.On("FindBankTransactionByID", ctx, "dep2").Return(&sameType, nil).Once()
	_, err = suite.service.LinkReversal(ctx, "dep", "dep2", "alice")
	suite.ErrorIs(err, services.ErrNotReversal)

	approved := suite.withdrawal
	approved.ID, approved.ReconciliationStatus = "wd-approved", domain.StatusApproved
	suite.repo.On("FindBankTransactionByID", ctx, "wd-approved").Return(&approved, nil).Once()
	_, err = suite.service.LinkReversal(ctx, "dep", "wd-approved", "alice")
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	paired := suite.withdrawal
	paired.ID, paired.ReversalPairID = "wd-paired", strPtr("p0")
	suite.repo.On("FindBankTransactionByID", ctx, "wd-paired").Return(&paired, nil).Once()
	_, err = suite.service.LinkReversal(ctx, "dep", "wd-paired", "alice")
	suite.ErrorIs(err, services.ErrAlreadyMatched)

	suite.repo.AssertNotCalled(suite.T(), "SaveReversalPair", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReversalServiceTestSuite) TestUnlinkReversal_RestoresPreviousStatuses() {
	ctx := context.Background()
	pair := &domain.ReversalPair{
		PairID:               "p1",
		GoalNumber:           "G1",
		FirstBankID:          "dep",
		SecondBankID:         "wd",
		FirstPreviousStatus:  domain.StatusPending,
		SecondPreviousStatus: domain.StatusMissingInFund,
	}
	dep, wd := suite.deposit, suite.withdrawal
	dep.ReconciliationStatus, wd.ReconciliationStatus = domain.StatusAutoApproved, domain.StatusAutoApproved
	suite.repo.On("FindReversalPairByTransaction", ctx, "wd").Return(pair, nil).Once()
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"dep", "wd"}).Return([]domain.BankTransaction{dep, wd}, nil).Once()

	var changes []domain.StatusChange
	suite.repo.On("DeleteReversalPair", ctx, "p1", mock.Anything).Run(func(args mock.Arguments) {
		changes = args.Get(2).([]domain.StatusChange)
	}).Return(nil).Once()

	err := suite.service.UnlinkReversal(ctx, "wd", "bob")

	suite.Require().NoError(err)
	depChange, ok := changeFor(changes, domain.SideBank, "dep")
	suite.Require().True(ok)
	suite.Equal(domain.StatusPending, depChange.To)
	wdChange, ok := changeFor(changes, domain.SideBank, "wd")
	suite.Require().True(ok)
	suite.Equal(domain.StatusMissingInFund, wdChange.To)
	suite.Equal("bob", wdChange.Actor)
}

func (suite *ReversalServiceTestSuite) TestUnlinkReversal_TerminalMemberBlocks() {
	ctx := context.Background()
	pair := &domain.ReversalPair{PairID: "p1", FirstBankID: "dep", SecondBankID: "wd", FirstPreviousStatus: domain.StatusPending, SecondPreviousStatus: domain.StatusPending}
	dep, wd := suite.deposit, suite.withdrawal
	dep.ReconciliationStatus, wd.ReconciliationStatus = domain.StatusApproved, domain.StatusAutoApproved
	suite.repo.On("FindReversalPairByTransaction", ctx, "dep").Return(pair, nil).Once()
	suite.repo.On("FindBankTransactionsByIDs", ctx, []string{"dep", "wd"}).Return([]domain.BankTransaction{dep, wd}, nil).Once()

	err := suite.service.UnlinkReversal(ctx, "dep", "bob")

	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.repo.AssertNotCalled(suite.T(), "DeleteReversalPair", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReversalServiceTestSuite) TestGetReversalPairInfo_NoPair() {
	ctx := context.Background()
	suite.repo.On("FindReversalPairByTransaction", ctx, "dep").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetReversalPairInfo(ctx, "dep")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestReversalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReversalServiceTestSuite))
}
