package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
	"github.com/SscSPs/fundraising_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const donationColumns = `donation_id, campaign_id, donor_address, amount, transaction_hash, ledger_timestamp, created_at`

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var m models.Donation
	if err := row.Scan(
		&m.DonationID,
		&m.CampaignID,
		&m.DonorAddress,
		&m.Amount,
		&m.TransactionHash,
		&m.LedgerTimestamp,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	d := mapping.ToDomainDonation(m)
	return &d, nil
}

// InsertDonation appends a donation. ON CONFLICT keeps the transaction usable when the
// transaction hash is already recorded.
func (q *pgxQueries) InsertDonation(ctx context.Context, donation domain.Donation) error {
	m := mapping.ToModelDonation(donation)

	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_hash) DO NOTHING;
	`
	tag, err := q.db.Exec(ctx, query,
		m.DonationID,
		m.CampaignID,
		m.DonorAddress,
		m.Amount,
		m.TransactionHash,
		m.LedgerTimestamp,
		m.CreatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%w: campaign %s", apperrors.ErrNotFound, m.CampaignID)
		}
		return fmt.Errorf("failed to insert donation %s: %w", m.TransactionHash, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: donation with transaction %s", apperrors.ErrDuplicate, m.TransactionHash)
	}
	return nil
}

// FindDonationsByCampaign lists a campaign's donations in ledger order.
func (q *pgxQueries) FindDonationsByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE campaign_id = $1 ORDER BY ledger_timestamp, created_at, donation_id;`
	rows, err := q.db.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations of campaign %s: %w", campaignID, err)
	}
	defer rows.Close()

	donations := []domain.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation row: %w", err)
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations of campaign %s: %w", campaignID, err)
	}
	return donations, nil
}

// FindDonationByTransactionHash retrieves the donation recorded for a ledger transaction.
func (q *pgxQueries) FindDonationByTransactionHash(ctx context.Context, txHash string) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE transaction_hash = $1;`
	d, err := scanDonation(q.db.QueryRow(ctx, query, txHash))
	if err != nil {
		return nil, notFoundOr(err, "failed to find donation by transaction %s", txHash)
	}
	return d, nil
}
