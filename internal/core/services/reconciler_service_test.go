package services_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconcilerServiceTestSuite struct {
	suite.Suite
	mockMirror *MockMirror
	mockLedger *MockLedger
	service    portssvc.ReconcilerSvc
	now        time.Time
}

func (suite *ReconcilerServiceTestSuite) SetupTest() {
	suite.mockMirror = new(MockMirror)
	suite.mockLedger = new(MockLedger)
	suite.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	suite.service = services.NewReconcilerService(
		suite.mockMirror.provider(),
		services.WithReconcilerLedger(suite.mockLedger),
		services.WithReconcilerCASMaxAttempts(3),
		services.WithReconcilerClock(func() time.Time { return suite.now }),
		services.WithReconcilerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func donationsOf(campaignID string, amounts ...int64) []domain.Donation {
	out := make([]domain.Donation, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, domain.Donation{
			DonationID:      fmt.Sprintf("d-%d", i),
			CampaignID:      campaignID,
			Amount:          decimal.NewFromInt(a),
			TransactionHash: fmt.Sprintf("0x%02d", i),
		})
	}
	return out
}

func (suite *ReconcilerServiceTestSuite) TestRollUpCampaign_AppliesSumAhead() {
	ctx := context.Background()
	campaign := newCampaign(domain.StatusActive, 1000, 400)
	updated := *campaign
	updated.CurrentAmount = decimal.NewFromInt(1100)
	updated.Status = domain.StatusFunded

	suite.mockMirror.On("FindCampaignByID", mock.Anything, campaign.CampaignID).Return(campaign, nil).Once()
	suite.mockMirror.On("FindDonationsByCampaign", mock.Anything, campaign.CampaignID).Return(donationsOf(campaign.CampaignID, 400, 700), nil).Once()
	suite.mockMirror.On("UpdateCampaignAmountAndStatus", mock.Anything, campaign.CampaignID,
		stateOf(400, domain.StatusActive), stateOf(1100, domain.StatusFunded), mock.Anything).Return(&updated, nil).Once()

	result, err := suite.service.RollUpCampaign(ctx, campaign.CampaignID)

	suite.Require().NoError(err)
	suite.True(result.Updated)
	suite.False(result.Flagged)
	suite.Equal(domain.StatusActive, result.PreviousStatus)
	suite.Equal(domain.StatusFunded, result.Status)
	suite.True(result.DonationSum.Equal(decimal.NewFromInt(1100)))
	suite.mockMirror.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestRollUpCampaign_InSyncIsNoop() {
	ctx := context.Background()
	campaign := newCampaign(domain.StatusActive, 1000, 500)

	suite.mockMirror.On("FindCampaignByID", mock.Anything, campaign.CampaignID).Return(campaign, nil).Once()
	suite.mockMirror.On("FindDonationsByCampaign", mock.Anything, campaign.CampaignID).Return(donationsOf(campaign.CampaignID, 200, 300), nil).Once()

	result, err := suite.service.RollUpCampaign(ctx, campaign.CampaignID)

	suite.Require().NoError(err)
	suite.False(result.Updated)
	suite.mockMirror.AssertNotCalled(suite.T(), "UpdateCampaignAmountAndStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestRollUpCampaign_SumBehindIsFlaggedOnce() {
	ctx := context.Background()
	campaign := newCampaign(domain.StatusActive, 1000, 900)
	divergence := domain.ReconciliationFlag{FlagID: "f-1", Kind: domain.FlagRollupDivergence, CampaignID: campaign.CampaignID}

	suite.mockMirror.On("FindCampaignByID", mock.Anything, campaign.CampaignID).Return(campaign, nil).Twice()
	suite.mockMirror.On("FindDonationsByCampaign", mock.Anything, campaign.CampaignID).Return(donationsOf(campaign.CampaignID, 100), nil).Twice()
	suite.mockMirror.On("ListOpenFlags", mock.Anything, 0).Return([]domain.ReconciliationFlag{}, nil).Once()
	suite.mockMirror.On("SaveFlag", mock.Anything, mock.MatchedBy(func(f domain.ReconciliationFlag) bool {
		return f.Kind == domain.FlagRollupDivergence && f.CampaignID == campaign.CampaignID && f.CreatedAt.Equal(suite.now)
	})).Return(nil).Once()
	suite.mockMirror.On("ListOpenFlags", mock.Anything, 0).Return([]domain.ReconciliationFlag{divergence}, nil).Once()

	first, err := suite.service.RollUpCampaign(ctx, campaign.CampaignID)
	suite.Require().NoError(err)
	suite.True(first.Flagged)
	suite.False(first.Updated)

	second, err := suite.service.RollUpCampaign(ctx, campaign.CampaignID)
	suite.Require().NoError(err)
	suite.True(second.Flagged)

	suite.mockMirror.AssertExpectations(suite.T())
	suite.mockMirror.AssertNotCalled(suite.T(), "UpdateCampaignAmountAndStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestRollUpCampaign_RetriesLostCompareAndSet() {
	ctx := context.Background()
	campaign := newCampaign(domain.StatusActive, 1000, 100)
	updated := *campaign
	updated.CurrentAmount = decimal.NewFromInt(300)

	suite.mockMirror.On("FindCampaignByID", mock.Anything, campaign.CampaignID).Return(campaign, nil).Twice()
	suite.mockMirror.On("FindDonationsByCampaign", mock.Anything, campaign.CampaignID).Return(donationsOf(campaign.CampaignID, 100, 200), nil).Twice()
	suite.mockMirror.On("UpdateCampaignAmountAndStatus", mock.Anything, campaign.CampaignID, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrConflict).Once()
	suite.mockMirror.On("UpdateCampaignAmountAndStatus", mock.Anything, campaign.CampaignID, mock.Anything, mock.Anything, mock.Anything).
		Return(&updated, nil).Once()

	result, err := suite.service.RollUpCampaign(ctx, campaign.CampaignID)

	suite.Require().NoError(err)
	suite.True(result.Updated)
	suite.mockMirror.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestRunPass_FlagsMirrorAheadOfLedger() {
	ctx := context.Background()
	campaign := newCampaign(domain.StatusActive, 1000, 300)

	suite.mockMirror.On("FindCampaignsByStatus", mock.Anything, []domain.CampaignStatus{domain.StatusActive, domain.StatusFunded}).
		Return([]domain.Campaign{*campaign}, nil).Once()
	suite.mockMirror.On("ListOpenFlags", mock.Anything, 0).Return([]domain.ReconciliationFlag{}, nil).Once()
	suite.mockMirror.On("FindCampaignByID", mock.Anything, campaign.CampaignID).Return(campaign, nil).Once()
	suite.mockMirror.On("FindDonationsByCampaign", mock.Anything, campaign.CampaignID).Return(donationsOf(campaign.CampaignID, 300), nil).Once()
	suite.mockLedger.On("QueryCampaign", mock.Anything, campaign.ContractAddress, campaign.CampaignID).
		Return(&domain.LedgerCampaignState{ContractAddress: campaign.ContractAddress, RaisedAmount: decimal.NewFromInt(200)}, nil).Once()
	suite.mockMirror.On("SaveFlag", mock.Anything, flagOfKind(domain.FlagMirrorExceedsLedger)).Return(nil).Once()

	report, err := suite.service.RunPass(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, report.Checked)
	suite.Equal(1, report.Flagged)
	suite.Equal(0, report.Failed)
	suite.mockMirror.AssertExpectations(suite.T())
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestRunPass_CountsFailuresAndContinues() {
	ctx := context.Background()
	broken := newCampaign(domain.StatusActive, 1000, 0)
	healthy := newCampaign(domain.StatusFunded, 1000, 1000)

	suite.mockMirror.On("FindCampaignsByStatus", mock.Anything, mock.Anything).Return([]domain.Campaign{*broken, *healthy}, nil).Once()
	suite.mockMirror.On("ListOpenFlags", mock.Anything, 0).Return([]domain.ReconciliationFlag{}, nil).Once()
	suite.mockMirror.On("FindCampaignByID", mock.Anything, broken.CampaignID).Return(nil, fmt.Errorf("scan: bad row")).Once()
	suite.mockMirror.On("FindCampaignByID", mock.Anything, healthy.CampaignID).Return(healthy, nil).Once()
	suite.mockMirror.On("FindDonationsByCampaign", mock.Anything, healthy.CampaignID).Return(donationsOf(healthy.CampaignID, 1000), nil).Once()
	suite.mockLedger.On("QueryCampaign", mock.Anything, healthy.ContractAddress, healthy.CampaignID).
		Return(&domain.LedgerCampaignState{RaisedAmount: decimal.NewFromInt(1000)}, nil).Once()

	report, err := suite.service.RunPass(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, report.Checked)
	suite.Equal(1, report.Failed)
	suite.Equal(0, report.Flagged)
	suite.Len(report.Results, 1)
}

func (suite *ReconcilerServiceTestSuite) TestResolveFlag() {
	ctx := context.Background()

	err := suite.service.ResolveFlag(ctx, "f-1", "   ")
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))

	suite.mockMirror.On("ResolveFlag", mock.Anything, "missing", "checked", suite.now).
		Return(fmt.Errorf("%w: open reconciliation flag missing", apperrors.ErrNotFound)).Once()
	err = suite.service.ResolveFlag(ctx, "missing", "checked")
	suite.Equal(apperrors.KindNotFound, apperrors.KindOf(err))

	suite.mockMirror.On("ResolveFlag", mock.Anything, "f-1", "replayed receipt by hand", suite.now).Return(nil).Once()
	suite.NoError(suite.service.ResolveFlag(ctx, "f-1", " replayed receipt by hand "))
	suite.mockMirror.AssertExpectations(suite.T())
}

func (suite *ReconcilerServiceTestSuite) TestListOpenFlags_DefaultsLimit() {
	ctx := context.Background()
	suite.mockMirror.On("ListOpenFlags", mock.Anything, 100).Return([]domain.ReconciliationFlag{{FlagID: "f-1"}}, nil).Once()

	flags, err := suite.service.ListOpenFlags(ctx, 0)

	suite.Require().NoError(err)
	suite.Len(flags, 1)
}

func TestReconcilerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerServiceTestSuite))
}
