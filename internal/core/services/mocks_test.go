package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// MockMirror is a mock of the whole mirror store. WithinTx runs the callback against the mock itself.
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CampaignRepo: m,
		DonationRepo: m,
		FlagRepo:     m,
		TxManager:    m,
	}
}

func (m *MockMirror) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.MirrorTx) error) error {
	return fn(ctx, m)
}

func (m *MockMirror) FindCampaignByID(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockMirror) FindCampaignByContractAddress(ctx context.Context, contractAddress string) (*domain.Campaign, error) {
	args := m.Called(ctx, contractAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockMirror) FindCampaignsByStatus(ctx context.Context, statuses ...domain.CampaignStatus) ([]domain.Campaign, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}

func (m *MockMirror) FindCampaignsByCreator(ctx context.Context, creatorAddress string) ([]domain.Campaign, error) {
	args := m.Called(ctx, creatorAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}

func (m *MockMirror) ListCampaigns(ctx context.Context, limit int, offset int) ([]domain.Campaign, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Campaign), args.Error(1)
}

func (m *MockMirror) InsertCampaign(ctx context.Context, campaign domain.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockMirror) UpdateCampaignAmountAndStatus(ctx context.Context, campaignID string, observed, next domain.CampaignState, change domain.StateChange) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, observed, next, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockMirror) FindDonationsByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donation), args.Error(1)
}

func (m *MockMirror) FindDonationByTransactionHash(ctx context.Context, txHash string) (*domain.Donation, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}

func (m *MockMirror) InsertDonation(ctx context.Context, donation domain.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockMirror) ListOpenFlags(ctx context.Context, limit int) ([]domain.ReconciliationFlag, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationFlag), args.Error(1)
}

func (m *MockMirror) SaveFlag(ctx context.Context, flag domain.ReconciliationFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

func (m *MockMirror) ResolveFlag(ctx context.Context, flagID string, note string, at time.Time) error {
	args := m.Called(ctx, flagID, note, at)
	return args.Error(0)
}

// MockLedger is a mock of the ledger gateway.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Submit(ctx context.Context, op domain.LedgerOperation) (*domain.Receipt, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockLedger) QueryCampaign(ctx context.Context, contractAddress string, campaignRef string) (*domain.LedgerCampaignState, error) {
	args := m.Called(ctx, contractAddress, campaignRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerCampaignState), args.Error(1)
}

func flagOfKind(kind domain.FlagKind) any {
	return mock.MatchedBy(func(f domain.ReconciliationFlag) bool { return f.Kind == kind })
}
