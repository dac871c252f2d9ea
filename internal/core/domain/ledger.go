package domain

import "github.com/shopspring/decimal"

// Ledger operation names, used for logging, metrics and the relay wire format.
const (
	OpDeployCampaign = "DEPLOY_CAMPAIGN"
	OpRecordDonation = "RECORD_DONATION"
	OpWithdraw       = "WITHDRAW"
)

// LedgerOperation is a state-changing operation submitted to the ledger.
// It is implemented by DeployCampaign, RecordDonation and Withdraw only.
type LedgerOperation interface {
	OperationName() string
	Key() string
	isLedgerOperation()
}

// DeployCampaign deploys a new campaign contract.
type DeployCampaign struct {
	IdempotencyKey string
	Title          string
	Description    string
	TargetAmount   decimal.Decimal
	EndDate        int64
	CreatorAddress string
}

// RecordDonation transfers amount into an existing campaign contract.
type RecordDonation struct {
	IdempotencyKey  string
	ContractAddress string
	CampaignRef     string
	DonorAddress    string
	Amount          decimal.Decimal
}

// Withdraw releases a funded campaign's balance to its creator.
type Withdraw struct {
	IdempotencyKey  string
	ContractAddress string
	CampaignRef     string
}

func (DeployCampaign) OperationName() string { return OpDeployCampaign }
func (RecordDonation) OperationName() string { return OpRecordDonation }
func (Withdraw) OperationName() string       { return OpWithdraw }

func (o DeployCampaign) Key() string { return o.IdempotencyKey }
func (o RecordDonation) Key() string { return o.IdempotencyKey }
func (o Withdraw) Key() string       { return o.IdempotencyKey }

func (DeployCampaign) isLedgerOperation() {}
func (RecordDonation) isLedgerOperation() {}
func (Withdraw) isLedgerOperation()       {}

// Receipt is the ledger's confirmation of an applied operation.
type Receipt struct {
	TransactionHash string
	ContractAddress string          // Set for DeployCampaign
	Amount          decimal.Decimal // Effect amount; set for RecordDonation
	BlockTimestamp  int64
}

// LedgerCampaignState is the ledger's own view of a campaign, used for reconciliation.
type LedgerCampaignState struct {
	ContractAddress string
	RaisedAmount    decimal.Decimal
	TargetAmount    decimal.Decimal
	Withdrawn       bool
}
