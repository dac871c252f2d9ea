package repositories

import (
	"context"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
)

// DonationReader defines read operations for donation data
type DonationReader interface {
	// FindDonationsByCampaign lists a campaign's donations in ledger order.
	FindDonationsByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error)

	// FindDonationByTransactionHash returns apperrors.ErrNotFound when the hash is unknown.
	FindDonationByTransactionHash(ctx context.Context, txHash string) (*domain.Donation, error)
}

// DonationWriter defines write operations for donation data
type DonationWriter interface {
	// InsertDonation appends a donation. An already recorded transaction hash is
	// apperrors.ErrDuplicate and leaves the surrounding transaction usable.
	InsertDonation(ctx context.Context, donation domain.Donation) error
}

// DonationRepositoryFacade combines all donation-related repository interfaces
type DonationRepositoryFacade interface {
	DonationReader
	DonationWriter
}
