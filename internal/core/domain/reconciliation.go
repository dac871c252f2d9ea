package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlagKind classifies a situation that needs manual reconciliation.
type FlagKind string

const (
	// FlagOrphanedContract: a contract was deployed but the mirror could not record it.
	FlagOrphanedContract FlagKind = "ORPHANED_CONTRACT"
	// FlagLedgerIndeterminate: a ledger call's effect is unknown.
	FlagLedgerIndeterminate FlagKind = "LEDGER_INDETERMINATE"
	// FlagRollupContention: a donation was recorded but the campaign roll-up did not land.
	FlagRollupContention FlagKind = "ROLLUP_CONTENTION"
	// FlagWithdrawalUnsynced: the ledger confirmed a withdrawal the mirror could not record.
	FlagWithdrawalUnsynced FlagKind = "WITHDRAWAL_UNSYNCED"
	// FlagMirrorExceedsLedger: the mirror claims more funds than the ledger reports.
	FlagMirrorExceedsLedger FlagKind = "MIRROR_EXCEEDS_LEDGER"
	// FlagRollupDivergence: the donation sum is below the recorded campaign amount.
	FlagRollupDivergence FlagKind = "ROLLUP_DIVERGENCE"
	// FlagUnrecordedDonation: the ledger confirmed a donation the mirror failed to commit.
	FlagUnrecordedDonation FlagKind = "UNRECORDED_DONATION"
)

// ReconciliationFlag is a durable note for operators. The core surfaces these but never
// resolves them on its own.
type ReconciliationFlag struct {
	FlagID          string     `json:"flagID"`
	Kind            FlagKind   `json:"kind"`
	Operation       string     `json:"operation"`
	CampaignID      string     `json:"campaignID,omitempty"`
	ContractAddress string     `json:"contractAddress,omitempty"`
	TransactionHash string     `json:"transactionHash,omitempty"`
	Details         string     `json:"details"`
	CreatedAt       time.Time  `json:"createdAt"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	ResolutionNote  *string    `json:"resolutionNote,omitempty"`
}

// Withdrawal is the result of a confirmed withdrawal.
type Withdrawal struct {
	Campaign        Campaign `json:"campaign"`
	TransactionHash string   `json:"transactionHash"`
	// MirrorUpdated is false when the ledger confirmed the withdrawal but the mirror could
	// not be moved to WITHDRAWN; a reconciliation flag is written in that case.
	MirrorUpdated bool `json:"mirrorUpdated"`
}

// RollUpResult describes one campaign roll-up by the reconciler.
type RollUpResult struct {
	CampaignID     string          `json:"campaignID"`
	PreviousAmount decimal.Decimal `json:"previousAmount"`
	DonationSum    decimal.Decimal `json:"donationSum"`
	PreviousStatus CampaignStatus  `json:"previousStatus"`
	Status         CampaignStatus  `json:"status"`
	Updated        bool            `json:"updated"`
	Flagged        bool            `json:"flagged"`
}

// ReconciliationReport summarizes a reconciliation pass.
type ReconciliationReport struct {
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Checked    int            `json:"checked"`
	Updated    int            `json:"updated"`
	Flagged    int            `json:"flagged"`
	Failed     int            `json:"failed"`
	Results    []RollUpResult `json:"results"`
}
