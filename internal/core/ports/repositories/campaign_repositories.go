package repositories

import (
	"context"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
)

// CampaignReader defines read operations for campaign data
type CampaignReader interface {
	// FindCampaignByID returns apperrors.ErrNotFound when no campaign has the ID.
	FindCampaignByID(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// FindCampaignByContractAddress looks a campaign up by its ledger contract.
	FindCampaignByContractAddress(ctx context.Context, contractAddress string) (*domain.Campaign, error)

	// FindCampaignsByStatus lists campaigns in any of the given statuses, oldest first.
	FindCampaignsByStatus(ctx context.Context, statuses ...domain.CampaignStatus) ([]domain.Campaign, error)

	// FindCampaignsByCreator lists the campaigns created by an address.
	FindCampaignsByCreator(ctx context.Context, creatorAddress string) ([]domain.Campaign, error)

	// ListCampaigns returns a page of all campaigns, newest first.
	ListCampaigns(ctx context.Context, limit int, offset int) ([]domain.Campaign, error)
}

// CampaignWriter defines write operations for campaign data
type CampaignWriter interface {
	// InsertCampaign persists a new campaign. A reused contract address is apperrors.ErrDuplicate.
	InsertCampaign(ctx context.Context, campaign domain.Campaign) error

	// UpdateCampaignAmountAndStatus moves the campaign from observed to next only if the
	// stored state still equals observed. A stale observation is apperrors.ErrConflict.
	UpdateCampaignAmountAndStatus(ctx context.Context, campaignID string, observed, next domain.CampaignState, change domain.StateChange) (*domain.Campaign, error)
}

// CampaignRepositoryFacade combines all campaign-related repository interfaces
type CampaignRepositoryFacade interface {
	CampaignReader
	CampaignWriter
}
