package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
)

// SQLiteMirrorRepository is the SQLite mirror store. The handle must be limited to one open
// connection; inside WithinTx only the tx argument may be used.
type SQLiteMirrorRepository struct {
	BaseRepository
	*sqlQueries
}

// sqlQueries implements the mirror operations over either the handle or a transaction.
type sqlQueries struct {
	db dbtx
}

var (
	_ portsrepo.MirrorTx           = (*sqlQueries)(nil)
	_ portsrepo.TransactionManager = (*SQLiteMirrorRepository)(nil)
)

// NewMirrorRepository creates the SQLite mirror store.
func NewMirrorRepository(db *sql.DB) *SQLiteMirrorRepository {
	return &SQLiteMirrorRepository{
		BaseRepository: BaseRepository{DB: db},
		sqlQueries:     &sqlQueries{db: db},
	}
}

func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	repo := NewMirrorRepository(db)

	return portsrepo.RepositoryProvider{
		CampaignRepo: repo,
		DonationRepo: repo,
		FlagRepo:     repo,
		TxManager:    repo,
	}
}
