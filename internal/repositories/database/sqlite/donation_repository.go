package sqlite

import (
	"context"
	"fmt"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
	"github.com/SscSPs/fundraising_app/internal/utils/mapping"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const donationColumns = `donation_id, campaign_id, donor_address, amount, transaction_hash, ledger_timestamp, created_at`

func scanDonation(row rowScanner) (*domain.Donation, error) {
	var (
		m                 models.Donation
		amount, createdAt string
	)
	err := row.Scan(
		&m.DonationID,
		&m.CampaignID,
		&m.DonorAddress,
		&amount,
		&m.TransactionHash,
		&m.LedgerTimestamp,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("donation %s has malformed amount %q: %w", m.DonationID, amount, err)
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("donation %s has malformed created_at: %w", m.DonationID, err)
	}
	d := mapping.ToDomainDonation(m)
	return &d, nil
}

// InsertDonation appends a donation. ON CONFLICT keeps the transaction usable when the
// transaction hash is already recorded.
func (q *sqlQueries) InsertDonation(ctx context.Context, donation domain.Donation) error {
	m := mapping.ToModelDonation(donation)

	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (transaction_hash) DO NOTHING;
	`
	res, err := q.db.ExecContext(ctx, query,
		m.DonationID,
		m.CampaignID,
		m.DonorAddress,
		m.Amount.String(),
		m.TransactionHash,
		m.LedgerTimestamp,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
			return fmt.Errorf("%w: campaign %s", apperrors.ErrNotFound, m.CampaignID)
		}
		return fmt.Errorf("failed to insert donation %s: %w", m.TransactionHash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for donation %s: %w", m.TransactionHash, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: donation with transaction %s", apperrors.ErrDuplicate, m.TransactionHash)
	}
	return nil
}

// FindDonationsByCampaign lists a campaign's donations in ledger order.
func (q *sqlQueries) FindDonationsByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE campaign_id = ? ORDER BY ledger_timestamp, created_at, donation_id;`
	rows, err := q.db.QueryContext(ctx, query, campaignID)
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
func (q *sqlQueries) FindDonationByTransactionHash(ctx context.Context, txHash string) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE transaction_hash = ?;`
	d, err := scanDonation(q.db.QueryRowContext(ctx, query, txHash))
	if err != nil {
		return nil, notFoundOr(err, "failed to find donation by transaction %s", txHash)
	}
	return d, nil
}
