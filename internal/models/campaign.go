package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// CampaignStatus is the persisted lifecycle status.
type CampaignStatus string

// Campaign is the row shape of the campaigns table.
type Campaign struct {
	CampaignID          string          `db:"campaign_id"`
	ContractAddress     string          `db:"contract_address"`
	Title               string          `db:"title"`
	Description         string          `db:"description"`
	TargetAmount        decimal.Decimal `db:"target_amount"`
	CurrentAmount       decimal.Decimal `db:"current_amount"`
	CreatorAddress      string          `db:"creator_address"`
	StartDate           int64           `db:"start_date"`
	EndDate             int64           `db:"end_date"`
	Status              CampaignStatus  `db:"status"`
	LastTransactionHash sql.NullString  `db:"last_transaction_hash"`
	Version             int64           `db:"version"`
	AuditFields
}
