package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is an append-only record of a ledger-confirmed transfer into a campaign.
type Donation struct {
	DonationID      string          `json:"donationID"`
	CampaignID      string          `json:"campaignID"`
	DonorAddress    string          `json:"donorAddress"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionHash string          `json:"transactionHash"` // Unique across all donations
	LedgerTimestamp int64           `json:"ledgerTimestamp"`
	CreatedAt       time.Time       `json:"createdAt"`
}
