package services

import (
	"log/slog"

	"github.com/SscSPs/fundraising_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ledger gateways.LedgerGateway, logger *slog.Logger) *portssvc.ServiceContainer {
	if logger == nil {
		logger = slog.Default()
	}

	container := &portssvc.ServiceContainer{}

	container.Campaign = NewCampaignService(
		repos,
		ledger,
		WithCASMaxAttempts(cfg.DonationCASMaxAttempts),
		WithCampaignLogger(logger.With(slog.String("component", "campaign"))),
	)

	container.Reconciler = NewReconcilerService(
		repos,
		WithReconcilerLedger(ledger),
		WithReconcilerCASMaxAttempts(cfg.DonationCASMaxAttempts),
		WithReconcilerLogger(logger.With(slog.String("component", "reconciler"))),
	)

	return container
}
