package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/dto"
	"github.com/SscSPs/fundraising_app/internal/handlers"
	"github.com/SscSPs/fundraising_app/internal/middleware"
	"github.com/SscSPs/fundraising_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CampaignService ---
type MockCampaignService struct {
	mock.Mock
}

func (m *MockCampaignService) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}
func (m *MockCampaignService) GetAllCampaigns(ctx context.Context, limit int, offset int) ([]domain.Campaign, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}
func (m *MockCampaignService) GetActiveCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}
func (m *MockCampaignService) GetFundedCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}
func (m *MockCampaignService) GetCampaignsByCreator(ctx context.Context, creatorAddress string) ([]domain.Campaign, error) {
	args := m.Called(ctx, creatorAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}
func (m *MockCampaignService) GetCampaignDonations(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donation), args.Error(1)
}
func (m *MockCampaignService) CreateCampaign(ctx context.Context, req dto.CreateCampaignRequest, creatorAddress string) (*domain.Campaign, error) {
	args := m.Called(ctx, req, creatorAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}
func (m *MockCampaignService) Donate(ctx context.Context, campaignID string, req dto.DonateRequest, donorAddress string) (*domain.Donation, error) {
	args := m.Called(ctx, campaignID, req, donorAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}
func (m *MockCampaignService) WithdrawFunds(ctx context.Context, campaignID string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}
func (m *MockCampaignService) ApplyDonationReceipt(ctx context.Context, campaignID string, req dto.DonationReceipt) (*domain.Donation, error) {
	args := m.Called(ctx, campaignID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}
func (m *MockCampaignService) Wait() {}

// Ensure mock implements the interface
var _ portssvc.CampaignSvcFacade = (*MockCampaignService)(nil)

// --- Test Suite ---
type CampaignHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockCampaignService
	jwtSecret   string
	issuer      string
	creator     string
	donor       string
	operator    string
}

func (suite *CampaignHandlerTestSuite) generateTestToken(address string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    suite.issuer,
		Subject:   address,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *CampaignHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.issuer = "fundraising-test"
	suite.creator = utils.ChecksumAddress("0x00000000000000000000000000000000000000c1")
	suite.donor = utils.ChecksumAddress("0x00000000000000000000000000000000000000d1")
	suite.operator = utils.ChecksumAddress("0x00000000000000000000000000000000000000e1")

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))

	suite.mockService = new(MockCampaignService)
	v1 := suite.router.Group("/api/v1")
	auth := middleware.AuthMiddleware(suite.jwtSecret, suite.issuer)
	handlers.RegisterCampaignRoutes(v1, suite.mockService, auth)
	handlers.RegisterReceiptRoutes(v1, suite.mockService, auth, middleware.RequireOperator([]string{suite.operator}))
}

func (suite *CampaignHandlerTestSuite) do(method, path, body, caller string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(caller))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CampaignHandlerTestSuite) campaign(status domain.CampaignStatus) *domain.Campaign {
	return &domain.Campaign{
		CampaignID:      uuid.NewString(),
		ContractAddress: utils.ChecksumAddress("0x00000000000000000000000000000000000000aa"),
		Title:           "School roof",
		TargetAmount:    decimal.NewFromInt(1000),
		CurrentAmount:   decimal.Zero,
		CreatorAddress:  suite.creator,
		EndDate:         time.Now().Add(24 * time.Hour).Unix(),
		Status:          status,
	}
}

// --- Test Cases ---

func (suite *CampaignHandlerTestSuite) TestCreateCampaign_UsesTokenSubjectAsCreator() {
	created := suite.campaign(domain.StatusActive)
	suite.mockService.On("CreateCampaign", mock.Anything,
		mock.MatchedBy(func(req dto.CreateCampaignRequest) bool {
			return req.Title == "School roof" && req.TargetAmount.Equal(decimal.NewFromInt(1000))
		}),
		suite.creator,
	).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/campaigns",
		`{"title":"School roof","targetAmount":"1000","endDate":4102444800}`, suite.creator)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.CampaignResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.CampaignID, resp.CampaignID)
	suite.Equal(domain.StatusActive, resp.Status)
	suite.False(resp.Expired)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *CampaignHandlerTestSuite) TestCreateCampaign_BindError() {
	w := suite.do(http.MethodPost, "/api/v1/campaigns", `{"targetAmount":"1000"}`, suite.creator)

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(string(apperrors.KindValidation), resp.Kind)
	suite.mockService.AssertNotCalled(suite.T(), "CreateCampaign", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CampaignHandlerTestSuite) TestWriteRoutesRequireToken() {
	w := suite.do(http.MethodPost, "/api/v1/campaigns/abc/donations", `{"amount":"10"}`, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Donate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CampaignHandlerTestSuite) TestDonate_ErrorKindsMapToStatus() {
	tests := []struct {
		kind apperrors.Kind
		want int
	}{
		{apperrors.KindValidation, http.StatusBadRequest},
		{apperrors.KindNotFound, http.StatusNotFound},
		{apperrors.KindStateConflict, http.StatusConflict},
		{apperrors.KindDuplicateEffect, http.StatusConflict},
		{apperrors.KindLedgerRejected, http.StatusUnprocessableEntity},
		{apperrors.KindLedgerFatal, http.StatusBadGateway},
		{apperrors.KindContention, http.StatusServiceUnavailable},
		{apperrors.KindLedgerIndeterminate, http.StatusGatewayTimeout},
		{apperrors.KindInconsistency, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		suite.Run(string(tt.kind), func() {
			campaignID := uuid.NewString()
			appErr := apperrors.NewAppError(tt.kind, "donation failed", nil).
				WithOperation(string(domain.OpRecordDonation)).
				WithCampaign(campaignID).
				WithTransaction("0xfeed")
			suite.mockService.On("Donate", mock.Anything, campaignID,
				mock.MatchedBy(func(req dto.DonateRequest) bool { return req.Amount.Equal(decimal.NewFromInt(10)) }),
				suite.donor,
			).Return(nil, appErr).Once()

			w := suite.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/donations", `{"amount":"10"}`, suite.donor)

			suite.Equal(tt.want, w.Code)
			var resp dto.ErrorResponse
			suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			suite.Equal(string(tt.kind), resp.Kind)
			suite.Equal(campaignID, resp.CampaignID)
			suite.Equal("0xfeed", resp.TransactionHash)
		})
	}
}

func (suite *CampaignHandlerTestSuite) TestWithdraw_OnlyCreator() {
	funded := suite.campaign(domain.StatusFunded)
	suite.mockService.On("GetCampaign", mock.Anything, funded.CampaignID).Return(funded, nil)

	w := suite.do(http.MethodPost, "/api/v1/campaigns/"+funded.CampaignID+"/withdraw", "", suite.donor)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "WithdrawFunds", mock.Anything, mock.Anything)

	withdrawn := *funded
	withdrawn.Status = domain.StatusWithdrawn
	suite.mockService.On("WithdrawFunds", mock.Anything, funded.CampaignID).
		Return(&domain.Withdrawal{Campaign: withdrawn, TransactionHash: "0xbeef", MirrorUpdated: true}, nil).Once()

	w = suite.do(http.MethodPost, "/api/v1/campaigns/"+funded.CampaignID+"/withdraw", "", suite.creator)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.WithdrawalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.MirrorUpdated)
	suite.Equal(domain.StatusWithdrawn, resp.Campaign.Status)
}

func (suite *CampaignHandlerTestSuite) TestApplyReceipt_OperatorsOnly() {
	campaignID := uuid.NewString()
	body := `{"donorAddress":"` + suite.donor + `","amount":"250","transactionHash":"0xabc","ledgerTimestamp":1700000000}`

	w := suite.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/receipts", body, suite.donor)
	suite.Equal(http.StatusForbidden, w.Code)
	w = suite.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/receipts", body, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "ApplyDonationReceipt", mock.Anything, mock.Anything, mock.Anything)

	suite.mockService.On("ApplyDonationReceipt", mock.Anything, campaignID,
		mock.MatchedBy(func(req dto.DonationReceipt) bool {
			return req.TransactionHash == "0xabc" && req.Amount.Equal(decimal.NewFromInt(250))
		}),
	).Return(&domain.Donation{
		DonationID:      uuid.NewString(),
		CampaignID:      campaignID,
		DonorAddress:    suite.donor,
		Amount:          decimal.NewFromInt(250),
		TransactionHash: "0xabc",
		LedgerTimestamp: 1700000000,
	}, nil).Once()

	w = suite.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/receipts", body, suite.operator)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.DonationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("0xabc", resp.TransactionHash)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *CampaignHandlerTestSuite) TestApplyReceipt_UnbackedReceiptIsConflict() {
	campaignID := uuid.NewString()
	suite.mockService.On("ApplyDonationReceipt", mock.Anything, campaignID, mock.Anything).
		Return(nil, apperrors.NewAppError(apperrors.KindStateConflict, "receipt not backed by the ledger", nil).
			WithCampaign(campaignID)).Once()

	body := `{"donorAddress":"` + suite.donor + `","amount":"1000","transactionHash":"0xforged"}`
	w := suite.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/receipts", body, suite.operator)

	suite.Equal(http.StatusConflict, w.Code)
	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(string(apperrors.KindStateConflict), resp.Kind)
}

func (suite *CampaignHandlerTestSuite) TestGetCampaign_NotFound() {
	suite.mockService.On("GetCampaign", mock.Anything, "missing").
		Return(nil, apperrors.NewAppError(apperrors.KindNotFound, "campaign missing not found", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/campaigns/missing", "", "")

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *CampaignHandlerTestSuite) TestListCampaignsByCreator_InvalidAddress() {
	w := suite.do(http.MethodGet, "/api/v1/creators/alice/campaigns", "", "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "GetCampaignsByCreator", mock.Anything, mock.Anything)
}

func (suite *CampaignHandlerTestSuite) TestListCampaigns_Paging() {
	w := suite.do(http.MethodGet, "/api/v1/campaigns?limit=500", "", "")
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockService.On("GetAllCampaigns", mock.Anything, 20, 0).
		Return([]domain.Campaign{*suite.campaign(domain.StatusActive)}, nil).Once()
	w = suite.do(http.MethodGet, "/api/v1/campaigns", "", "")
	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListCampaignsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Campaigns, 1)
	suite.mockService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestCampaignHandler(t *testing.T) {
	suite.Run(t, new(CampaignHandlerTestSuite))
}
