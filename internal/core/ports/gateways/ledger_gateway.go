package gateways

import (
	"context"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
)

// LedgerGateway is the engine's only path to the authoritative ledger.
//
// Submit errors are *apperrors.AppError values of kind LEDGER_REJECTED (the operation was
// not applied), LEDGER_INDETERMINATE (its effect is unknown) or LEDGER_FATAL.
type LedgerGateway interface {
	Submit(ctx context.Context, op domain.LedgerOperation) (*domain.Receipt, error)

	// QueryCampaign reads the ledger's own view of a campaign.
	QueryCampaign(ctx context.Context, contractAddress string, campaignRef string) (*domain.LedgerCampaignState, error)
}
