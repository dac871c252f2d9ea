package mapping

import (
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
)

// ToModelDonation converts a domain.Donation to its row shape.
func ToModelDonation(d domain.Donation) models.Donation {
	return models.Donation{
		DonationID:      d.DonationID,
		CampaignID:      d.CampaignID,
		DonorAddress:    d.DonorAddress,
		Amount:          d.Amount,
		TransactionHash: d.TransactionHash,
		LedgerTimestamp: d.LedgerTimestamp,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainDonation converts a donations row to a domain.Donation.
func ToDomainDonation(m models.Donation) domain.Donation {
	return domain.Donation{
		DonationID:      m.DonationID,
		CampaignID:      m.CampaignID,
		DonorAddress:    m.DonorAddress,
		Amount:          m.Amount,
		TransactionHash: m.TransactionHash,
		LedgerTimestamp: m.LedgerTimestamp,
		CreatedAt:       m.CreatedAt,
	}
}
