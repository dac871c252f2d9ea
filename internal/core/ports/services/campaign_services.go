package services

import (
	"context"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/dto"
)

// CampaignReaderSvc defines read operations for campaign data. Reads never touch the ledger.
type CampaignReaderSvc interface {
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// GetAllCampaigns returns a page of campaigns, newest first.
	GetAllCampaigns(ctx context.Context, limit int, offset int) ([]domain.Campaign, error)

	GetActiveCampaigns(ctx context.Context) ([]domain.Campaign, error)

	GetFundedCampaigns(ctx context.Context) ([]domain.Campaign, error)

	GetCampaignsByCreator(ctx context.Context, creatorAddress string) ([]domain.Campaign, error)

	// GetCampaignDonations fails with NOT_FOUND for an unknown campaign.
	GetCampaignDonations(ctx context.Context, campaignID string) ([]domain.Donation, error)
}

// CampaignWriterSvc defines the ledger-backed operations
type CampaignWriterSvc interface {
	// CreateCampaign deploys a campaign contract and mirrors it as ACTIVE.
	CreateCampaign(ctx context.Context, req dto.CreateCampaignRequest, creatorAddress string) (*domain.Campaign, error)

	// Donate records a ledger-confirmed donation and advances the campaign.
	Donate(ctx context.Context, campaignID string, req dto.DonateRequest, donorAddress string) (*domain.Donation, error)

	// WithdrawFunds releases a FUNDED campaign's balance to its creator.
	WithdrawFunds(ctx context.Context, campaignID string) (*domain.Withdrawal, error)

	// ApplyDonationReceipt mirrors a donation confirmed by the ledger out of band.
	ApplyDonationReceipt(ctx context.Context, campaignID string, req dto.DonationReceipt) (*domain.Donation, error)
}

// CampaignSvcFacade combines all campaign-related service interfaces
type CampaignSvcFacade interface {
	CampaignReaderSvc
	CampaignWriterSvc

	// Wait blocks until detached ledger calls and their commits have finished.
	Wait()
}
