package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is the row shape of the donations table.
type Donation struct {
	DonationID      string          `db:"donation_id"`
	CampaignID      string          `db:"campaign_id"`
	DonorAddress    string          `db:"donor_address"`
	Amount          decimal.Decimal `db:"amount"`
	TransactionHash string          `db:"transaction_hash"`
	LedgerTimestamp int64           `db:"ledger_timestamp"`
	CreatedAt       time.Time       `db:"created_at"`
}
