package ledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Submit(ctx context.Context, op domain.LedgerOperation) (*domain.Receipt, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockClient) QueryCampaign(ctx context.Context, contractAddress string, campaignRef string) (*domain.LedgerCampaignState, error) {
	args := m.Called(ctx, contractAddress, campaignRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerCampaignState), args.Error(1)
}

type GatewayTestSuite struct {
	suite.Suite
	client  *MockClient
	gateway *ledger.Gateway
}

func (suite *GatewayTestSuite) SetupTest() {
	suite.client = new(MockClient)
	suite.gateway = ledger.NewGateway(suite.client, ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func deployOp() domain.DeployCampaign {
	return domain.DeployCampaign{IdempotencyKey: "k", TargetAmount: decimal.NewFromInt(1000), EndDate: 1}
}

func (suite *GatewayTestSuite) TestUntypedErrorIsIndeterminate() {
	cause := errors.New("connection reset by peer")
	suite.client.On("Submit", mock.Anything, deployOp()).Return(nil, cause).Once()

	_, err := suite.gateway.Submit(context.Background(), deployOp())
	suite.ErrorIs(err, apperrors.ErrLedgerIndeterminate)
	suite.ErrorIs(err, cause)
	suite.client.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestDeadlineIsIndeterminate() {
	suite.client.On("Submit", mock.Anything, deployOp()).Return(nil, context.DeadlineExceeded).Once()

	_, err := suite.gateway.Submit(context.Background(), deployOp())
	suite.Equal(apperrors.KindLedgerIndeterminate, apperrors.KindOf(err))
}

func (suite *GatewayTestSuite) TestTypedKindsPassThrough() {
	rejected := apperrors.NewAppError(apperrors.KindLedgerRejected, "target too low", nil)
	suite.client.On("Submit", mock.Anything, deployOp()).Return(nil, rejected).Once()

	_, err := suite.gateway.Submit(context.Background(), deployOp())
	suite.Equal(apperrors.KindLedgerRejected, apperrors.KindOf(err))

	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(domain.OpDeployCampaign, appErr.Operation)
}

func (suite *GatewayTestSuite) TestNonLedgerAppErrorIsIndeterminate() {
	suite.client.On("Submit", mock.Anything, deployOp()).Return(nil, apperrors.Validation("odd")).Once()

	_, err := suite.gateway.Submit(context.Background(), deployOp())
	suite.Equal(apperrors.KindLedgerIndeterminate, apperrors.KindOf(err))
}

func (suite *GatewayTestSuite) TestDeployWithoutAddressIsIndeterminate() {
	suite.client.On("Submit", mock.Anything, deployOp()).Return(&domain.Receipt{TransactionHash: "0x1"}, nil).Once()

	_, err := suite.gateway.Submit(context.Background(), deployOp())
	suite.ErrorIs(err, apperrors.ErrLedgerIndeterminate)

	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal("0x1", appErr.TransactionHash)
}

func (suite *GatewayTestSuite) TestSuccessWithoutHashIsIndeterminate() {
	suite.client.On("Submit", mock.Anything, deployOp()).Return(&domain.Receipt{ContractAddress: "0xaa"}, nil).Once()

	_, err := suite.gateway.Submit(context.Background(), deployOp())
	suite.ErrorIs(err, apperrors.ErrLedgerIndeterminate)
}

func (suite *GatewayTestSuite) TestDonationReceiptIsCompleted() {
	op := domain.RecordDonation{IdempotencyKey: "d", ContractAddress: "0xaa", Amount: decimal.NewFromInt(400)}
	suite.client.On("Submit", mock.Anything, op).Return(&domain.Receipt{TransactionHash: "0x2"}, nil).Once()

	receipt, err := suite.gateway.Submit(context.Background(), op)
	suite.Require().NoError(err)
	suite.True(receipt.Amount.Equal(decimal.NewFromInt(400)))
	suite.NotZero(receipt.BlockTimestamp)
}

func (suite *GatewayTestSuite) TestQueryCampaign() {
	state := &domain.LedgerCampaignState{RaisedAmount: decimal.NewFromInt(5)}
	suite.client.On("QueryCampaign", mock.Anything, "0xaa", "c").Return(state, nil).Once()
	suite.client.On("QueryCampaign", mock.Anything, "0xbb", "c").Return(nil, errors.New("eof")).Once()

	got, err := suite.gateway.QueryCampaign(context.Background(), "0xaa", "c")
	suite.Require().NoError(err)
	suite.Equal(state, got)

	_, err = suite.gateway.QueryCampaign(context.Background(), "0xbb", "c")
	suite.ErrorIs(err, apperrors.ErrLedgerIndeterminate)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}
