package dto

import (
	"time"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DonateRequest defines the data needed to donate. The donor is the authenticated caller.
type DonateRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"250"`
}

// DonationReceipt describes a donation the ledger confirmed outside the service.
type DonationReceipt struct {
	DonorAddress    string          `json:"donorAddress" binding:"required,ethaddr"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string"`
	TransactionHash string          `json:"transactionHash" binding:"required"`
	LedgerTimestamp int64           `json:"ledgerTimestamp"`
}

// DonationResponse defines the data returned for a donation.
type DonationResponse struct {
	DonationID      string          `json:"donationID"`
	CampaignID      string          `json:"campaignID"`
	DonorAddress    string          `json:"donorAddress"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string"`
	TransactionHash string          `json:"transactionHash"`
	LedgerTimestamp int64           `json:"ledgerTimestamp"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToDonationResponse converts a domain.Donation to DonationResponse
func ToDonationResponse(d *domain.Donation) DonationResponse {
	return DonationResponse{
		DonationID:      d.DonationID,
		CampaignID:      d.CampaignID,
		DonorAddress:    d.DonorAddress,
		Amount:          d.Amount,
		TransactionHash: d.TransactionHash,
		LedgerTimestamp: d.LedgerTimestamp,
		CreatedAt:       d.CreatedAt,
	}
}

// ListDonationsResponse wraps a campaign's donations.
type ListDonationsResponse struct {
	Donations []DonationResponse `json:"donations"`
}

// ToListDonationResponse converts a slice of domain.Donation.
func ToListDonationResponse(donations []domain.Donation) ListDonationsResponse {
	res := make([]DonationResponse, len(donations))
	for i := range donations {
		res[i] = ToDonationResponse(&donations[i])
	}
	return ListDonationsResponse{Donations: res}
}
