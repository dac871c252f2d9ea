package models

import (
	"database/sql"
	"time"
)

// ReconciliationFlag is the row shape of the reconciliation_flags table.
type ReconciliationFlag struct {
	FlagID          string         `db:"flag_id"`
	Kind            string         `db:"kind"`
	Operation       string         `db:"operation"`
	CampaignID      sql.NullString `db:"campaign_id"`
	ContractAddress sql.NullString `db:"contract_address"`
	TransactionHash sql.NullString `db:"transaction_hash"`
	Details         string         `db:"details"`
	CreatedAt       time.Time      `db:"created_at"`
	ResolvedAt      sql.NullTime   `db:"resolved_at"`
	ResolutionNote  sql.NullString `db:"resolution_note"`
}
