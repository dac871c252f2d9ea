package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignStatus is the lifecycle state of a campaign in the mirror.
type CampaignStatus string

const (
	StatusActive    CampaignStatus = "ACTIVE"
	StatusFunded    CampaignStatus = "FUNDED"
	StatusWithdrawn CampaignStatus = "WITHDRAWN"
)

// Campaign is an immutable snapshot of a campaign aggregate as stored in the mirror.
// Services never mutate a loaded Campaign in place; changes go through compare-and-set.
type Campaign struct {
	CampaignID          string          `json:"campaignID"`      // Local primary key (UUID)
	ContractAddress     string          `json:"contractAddress"` // Assigned by the ledger at deploy, immutable
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	TargetAmount        decimal.Decimal `json:"targetAmount"`
	CurrentAmount       decimal.Decimal `json:"currentAmount"`
	CreatorAddress      string          `json:"creatorAddress"`
	StartDate           int64           `json:"startDate"` // Ledger-native unix seconds
	EndDate             int64           `json:"endDate"`   // Ledger-native unix seconds
	Status              CampaignStatus  `json:"status"`
	LastTransactionHash string          `json:"lastTransactionHash"` // Ledger tx that last changed the aggregate
	Version             int64           `json:"version"`
	AuditFields
}

// CampaignState is the part of a campaign guarded by compare-and-set.
type CampaignState struct {
	CurrentAmount decimal.Decimal
	Status        CampaignStatus
}

// Equal compares two states by value.
func (s CampaignState) Equal(o CampaignState) bool {
	return s.Status == o.Status && s.CurrentAmount.Equal(o.CurrentAmount)
}

// StateChange carries the metadata written alongside a compare-and-set.
type StateChange struct {
	TransactionHash string
	At              time.Time
}

// State returns the compare-and-set key of the campaign.
func (c Campaign) State() CampaignState {
	return CampaignState{CurrentAmount: c.CurrentAmount, Status: c.Status}
}

// IsExpired reports whether the campaign's end date has passed. Expiry is computed at read
// time only; the mirror never changes status because of it.
func (c Campaign) IsExpired(now time.Time) bool {
	return now.Unix() >= c.EndDate
}
