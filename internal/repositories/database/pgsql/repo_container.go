package pgsql

import (
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxMirrorRepository is the PostgreSQL mirror store. Outside WithinTx every call runs on
// its own pooled connection.
type PgxMirrorRepository struct {
	BaseRepository
	*pgxQueries
}

// pgxQueries implements the mirror operations over either the pool or a transaction.
type pgxQueries struct {
	db dbtx
}

var (
	_ portsrepo.MirrorTx           = (*pgxQueries)(nil)
	_ portsrepo.TransactionManager = (*PgxMirrorRepository)(nil)
)

// NewMirrorRepository creates the PostgreSQL mirror store.
func NewMirrorRepository(dbPool *pgxpool.Pool) *PgxMirrorRepository {
	return &PgxMirrorRepository{
		BaseRepository: BaseRepository{Pool: dbPool},
		pgxQueries:     &pgxQueries{db: dbPool},
	}
}

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	repo := NewMirrorRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CampaignRepo: repo,
		DonationRepo: repo,
		FlagRepo:     repo,
		TxManager:    repo,
	}
}
