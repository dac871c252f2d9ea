package repositories

import "context"

// MirrorTx is the set of mirror operations available inside a local transaction.
type MirrorTx interface {
	CampaignReader
	CampaignWriter
	DonationReader
	DonationWriter
	ReconciliationFlagReader
	ReconciliationFlagWriter
}

// TransactionManager scopes mirror mutations into one local transaction.
type TransactionManager interface {
	// WithinTx runs fn inside a transaction. The transaction commits when fn returns nil
	// and rolls back otherwise. Only tx may be used inside fn.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx MirrorTx) error) error
}
