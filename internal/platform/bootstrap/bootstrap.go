// Package bootstrap opens the mirror store and the ledger client selected by configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/fundraising_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	"github.com/SscSPs/fundraising_app/internal/ledger"
	"github.com/SscSPs/fundraising_app/internal/ledger/relay"
	"github.com/SscSPs/fundraising_app/internal/ledger/simulated"
	"github.com/SscSPs/fundraising_app/internal/platform/config"
	"github.com/SscSPs/fundraising_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/fundraising_app/internal/repositories/database/sqlite"
	"github.com/SscSPs/fundraising_app/pkg/database"
)

// Migrate applies pending migrations to the configured mirror.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	switch cfg.MirrorDriver {
	case config.MirrorPostgres:
		return database.MigratePostgres(cfg.DatabaseURL, logger)
	case config.MirrorSQLite:
		return database.MigrateSQLite(cfg.SQLitePath, logger)
	default:
		return fmt.Errorf("unknown mirror driver %q", cfg.MirrorDriver)
	}
}

// OpenMirror connects to the configured mirror. The returned func releases the connection.
func OpenMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.MirrorDriver {
	case config.MirrorPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Database connection pool established.", slog.String("driver", cfg.MirrorDriver))
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
	case config.MirrorSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite mirror opened.", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), func() {
			if err := db.Close(); err != nil {
				logger.Error("Error closing SQLite mirror", slog.String("error", err.Error()))
			}
		}, nil
	default:
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unknown mirror driver %q", cfg.MirrorDriver)
	}
}

// NewLedger builds the ledger gateway for the configured mode.
func NewLedger(cfg *config.Config, logger *slog.Logger) (gateways.LedgerGateway, error) {
	var client ledger.Client
	switch cfg.LedgerMode {
	case config.LedgerRelay:
		client = relay.NewClient(relay.Config{
			BaseURL: cfg.LedgerURL,
			APIKey:  cfg.LedgerAPIKey,
			Timeout: cfg.LedgerTimeout,
		})
	case config.LedgerSimulated:
		logger.Warn("Using the in-memory simulated ledger; nothing is settled")
		client = simulated.New()
	default:
		return nil, fmt.Errorf("unknown ledger mode %q", cfg.LedgerMode)
	}
	return ledger.NewGateway(client, ledger.WithLogger(logger.With(slog.String("component", "ledger")))), nil
}
