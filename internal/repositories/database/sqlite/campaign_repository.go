package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
	"github.com/SscSPs/fundraising_app/internal/utils/mapping"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const campaignColumns = `campaign_id, contract_address, title, description, target_amount, current_amount,
	creator_address, start_date, end_date, status, last_transaction_hash, version, created_at, last_updated_at`

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var (
		m                       models.Campaign
		target, current         string
		createdAt, lastUpdateAt string
	)
	err := row.Scan(
		&m.CampaignID,
		&m.ContractAddress,
		&m.Title,
		&m.Description,
		&target,
		&current,
		&m.CreatorAddress,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.LastTransactionHash,
		&m.Version,
		&createdAt,
		&lastUpdateAt,
	)
	if err != nil {
		return nil, err
	}

	if m.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return nil, fmt.Errorf("campaign %s has malformed target amount %q: %w", m.CampaignID, target, err)
	}
	if m.CurrentAmount, err = decimal.NewFromString(current); err != nil {
		return nil, fmt.Errorf("campaign %s has malformed current amount %q: %w", m.CampaignID, current, err)
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("campaign %s has malformed created_at: %w", m.CampaignID, err)
	}
	if m.LastUpdatedAt, err = parseTime(lastUpdateAt); err != nil {
		return nil, fmt.Errorf("campaign %s has malformed last_updated_at: %w", m.CampaignID, err)
	}

	c := mapping.ToDomainCampaign(m)
	return &c, nil
}

func (q *sqlQueries) queryCampaigns(ctx context.Context, query string, args ...any) ([]domain.Campaign, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []domain.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// InsertCampaign inserts a new campaign.
func (q *sqlQueries) InsertCampaign(ctx context.Context, campaign domain.Campaign) error {
	m := mapping.ToModelCampaign(campaign)

	query := `INSERT INTO campaigns (` + campaignColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := q.db.ExecContext(ctx, query,
		m.CampaignID,
		m.ContractAddress,
		m.Title,
		m.Description,
		m.TargetAmount.String(),
		m.CurrentAmount.String(),
		m.CreatorAddress,
		m.StartDate,
		m.EndDate,
		string(m.Status),
		nullString(m.LastTransactionHash),
		m.Version,
		formatTime(m.CreatedAt),
		formatTime(m.LastUpdatedAt),
	)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintUnique) || isConstraint(err, sqlite3.ErrConstraintPrimaryKey) {
			return fmt.Errorf("%w: campaign %s or contract %s already exists", apperrors.ErrDuplicate, m.CampaignID, m.ContractAddress)
		}
		return fmt.Errorf("failed to insert campaign %s: %w", m.CampaignID, err)
	}
	return nil
}

// FindCampaignByID retrieves a campaign by its ID.
func (q *sqlQueries) FindCampaignByID(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE campaign_id = ?;`
	c, err := scanCampaign(q.db.QueryRowContext(ctx, query, campaignID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find campaign by ID %s", campaignID)
	}
	return c, nil
}

// FindCampaignByContractAddress retrieves a campaign by its ledger contract address.
func (q *sqlQueries) FindCampaignByContractAddress(ctx context.Context, contractAddress string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE contract_address = ? COLLATE NOCASE;`
	c, err := scanCampaign(q.db.QueryRowContext(ctx, query, contractAddress))
	if err != nil {
		return nil, notFoundOr(err, "failed to find campaign by contract %s", contractAddress)
	}
	return c, nil
}

// FindCampaignsByStatus lists campaigns in any of the given statuses.
func (q *sqlQueries) FindCampaignsByStatus(ctx context.Context, statuses ...domain.CampaignStatus) ([]domain.Campaign, error) {
	if len(statuses) == 0 {
		return []domain.Campaign{}, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		placeholders[i] = "?"
		args[i] = string(s)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE status IN (` + strings.Join(placeholders, ", ") + `) ORDER BY created_at, campaign_id;`
	campaigns, err := q.queryCampaigns(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns by status: %w", err)
	}
	return campaigns, nil
}

// FindCampaignsByCreator lists the campaigns of one creator.
func (q *sqlQueries) FindCampaignsByCreator(ctx context.Context, creatorAddress string) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE creator_address = ? COLLATE NOCASE ORDER BY created_at DESC, campaign_id;`
	campaigns, err := q.queryCampaigns(ctx, query, creatorAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns of creator %s: %w", creatorAddress, err)
	}
	return campaigns, nil
}

// ListCampaigns returns a page of campaigns, newest first.
func (q *sqlQueries) ListCampaigns(ctx context.Context, limit int, offset int) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, campaign_id LIMIT ? OFFSET ?;`
	campaigns, err := q.queryCampaigns(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// UpdateCampaignAmountAndStatus compare-and-sets the aggregate against the observed state.
// Amounts are compared in their canonical text form.
func (q *sqlQueries) UpdateCampaignAmountAndStatus(ctx context.Context, campaignID string, observed, next domain.CampaignState, change domain.StateChange) (*domain.Campaign, error) {
	if err := domain.ValidateStateChange(observed, next); err != nil {
		return nil, fmt.Errorf("%w: campaign %s: %v", apperrors.ErrStateConflict, campaignID, err)
	}

	query := `
		UPDATE campaigns
		SET current_amount = ?,
			status = ?,
			last_transaction_hash = COALESCE(NULLIF(?, ''), last_transaction_hash),
			last_updated_at = ?,
			version = version + 1
		WHERE campaign_id = ? AND current_amount = ? AND status = ?;
	`
	res, err := q.db.ExecContext(ctx, query,
		next.CurrentAmount.String(),
		string(next.Status),
		change.TransactionHash,
		formatTime(change.At),
		campaignID,
		observed.CurrentAmount.String(),
		string(observed.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign %s: %w", campaignID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected for campaign %s: %w", campaignID, err)
	}

	current, err := q.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: campaign %s no longer at %s/%s", apperrors.ErrConflict, campaignID, observed.CurrentAmount, observed.Status)
	}
	return current, nil
}
