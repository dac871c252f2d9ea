package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	"github.com/SscSPs/fundraising_app/internal/platform/metrics"
	"github.com/google/uuid"
)

// saveFlag persists a reconciliation flag outside any transaction. A flag that cannot be
// written is logged with every identifier so an operator can still find the effect.
func saveFlag(ctx context.Context, base *BaseService, w portsrepo.ReconciliationFlagWriter, now time.Time, flag domain.ReconciliationFlag) {
	if flag.FlagID == "" {
		flag.FlagID = uuid.NewString()
	}
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = now
	}
	attrs := []any{
		slog.String("flag_id", flag.FlagID),
		slog.String("flag_kind", string(flag.Kind)),
		slog.String("operation", flag.Operation),
		slog.String("campaign_id", flag.CampaignID),
		slog.String("contract_address", flag.ContractAddress),
		slog.String("transaction_hash", flag.TransactionHash),
		slog.String("details", flag.Details),
	}
	if err := w.SaveFlag(ctx, flag); err != nil {
		base.LogError(ctx, err, "Failed to persist reconciliation flag", attrs...)
		return
	}
	metrics.ReconciliationFlagsTotal.WithLabelValues(string(flag.Kind)).Inc()
	base.LogWarn(ctx, "Reconciliation flag raised", attrs...)
}

// hasOpenFlag reports whether flags already hold an open flag of kind for campaignID.
func hasOpenFlag(flags []domain.ReconciliationFlag, kind domain.FlagKind, campaignID string) bool {
	for _, f := range flags {
		if f.Kind == kind && f.CampaignID == campaignID && f.ResolvedAt == nil {
			return true
		}
	}
	return false
}
