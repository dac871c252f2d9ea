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

const campaignColumns = `campaign_id, contract_address, title, description, target_amount, current_amount,
	creator_address, start_date, end_date, status, last_transaction_hash, version, created_at, last_updated_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var m models.Campaign
	err := row.Scan(
		&m.CampaignID,
		&m.ContractAddress,
		&m.Title,
		&m.Description,
		&m.TargetAmount,
		&m.CurrentAmount,
		&m.CreatorAddress,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.LastTransactionHash,
		&m.Version,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c := mapping.ToDomainCampaign(m)
	return &c, nil
}

func (q *pgxQueries) queryCampaigns(ctx context.Context, query string, args ...any) ([]domain.Campaign, error) {
	rows, err := q.db.Query(ctx, query, args...)
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
func (q *pgxQueries) InsertCampaign(ctx context.Context, campaign domain.Campaign) error {
	m := mapping.ToModelCampaign(campaign)

	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := q.db.Exec(ctx, query,
		m.CampaignID,
		m.ContractAddress,
		m.Title,
		m.Description,
		m.TargetAmount,
		m.CurrentAmount,
		m.CreatorAddress,
		m.StartDate,
		m.EndDate,
		m.Status,
		m.LastTransactionHash,
		m.Version,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return fmt.Errorf("%w: campaign %s or contract %s already exists", apperrors.ErrDuplicate, m.CampaignID, m.ContractAddress)
		}
		return fmt.Errorf("failed to insert campaign %s: %w", m.CampaignID, err)
	}
	return nil
}

// FindCampaignByID retrieves a campaign by its ID.
func (q *pgxQueries) FindCampaignByID(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE campaign_id = $1;`
	c, err := scanCampaign(q.db.QueryRow(ctx, query, campaignID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find campaign by ID %s", campaignID)
	}
	return c, nil
}

// FindCampaignByContractAddress retrieves a campaign by its ledger contract address.
func (q *pgxQueries) FindCampaignByContractAddress(ctx context.Context, contractAddress string) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE lower(contract_address) = lower($1);`
	c, err := scanCampaign(q.db.QueryRow(ctx, query, contractAddress))
	if err != nil {
		return nil, notFoundOr(err, "failed to find campaign by contract %s", contractAddress)
	}
	return c, nil
}

// FindCampaignsByStatus lists campaigns in any of the given statuses.
func (q *pgxQueries) FindCampaignsByStatus(ctx context.Context, statuses ...domain.CampaignStatus) ([]domain.Campaign, error) {
	if len(statuses) == 0 {
		return []domain.Campaign{}, nil
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE status = ANY($1) ORDER BY created_at, campaign_id;`
	campaigns, err := q.queryCampaigns(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns by status %v: %w", names, err)
	}
	return campaigns, nil
}

// FindCampaignsByCreator lists the campaigns of one creator.
func (q *pgxQueries) FindCampaignsByCreator(ctx context.Context, creatorAddress string) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE lower(creator_address) = lower($1) ORDER BY created_at DESC, campaign_id;`
	campaigns, err := q.queryCampaigns(ctx, query, creatorAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns of creator %s: %w", creatorAddress, err)
	}
	return campaigns, nil
}

// ListCampaigns returns a page of campaigns, newest first.
func (q *pgxQueries) ListCampaigns(ctx context.Context, limit int, offset int) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, campaign_id LIMIT $1 OFFSET $2;`
	campaigns, err := q.queryCampaigns(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// UpdateCampaignAmountAndStatus compare-and-sets the aggregate against the observed state.
func (q *pgxQueries) UpdateCampaignAmountAndStatus(ctx context.Context, campaignID string, observed, next domain.CampaignState, change domain.StateChange) (*domain.Campaign, error) {
	if err := domain.ValidateStateChange(observed, next); err != nil {
		return nil, fmt.Errorf("%w: campaign %s: %v", apperrors.ErrStateConflict, campaignID, err)
	}

	query := `
		UPDATE campaigns
		SET current_amount = $4,
			status = $5,
			last_transaction_hash = COALESCE(NULLIF($6::text, ''), last_transaction_hash),
			last_updated_at = $7,
			version = version + 1
		WHERE campaign_id = $1 AND current_amount = $2 AND status = $3
		RETURNING ` + campaignColumns + `;
	`
	c, err := scanCampaign(q.db.QueryRow(ctx, query,
		campaignID,
		observed.CurrentAmount,
		string(observed.Status),
		next.CurrentAmount,
		string(next.Status),
		change.TransactionHash,
		change.At,
	))
	if err == nil {
		return c, nil
	}
	if !errorsIsNoRows(err) {
		return nil, fmt.Errorf("failed to update campaign %s: %w", campaignID, err)
	}

	var exists bool
	if err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE campaign_id = $1);`, campaignID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check campaign %s: %w", campaignID, err)
	}
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	return nil, fmt.Errorf("%w: campaign %s no longer at %s/%s", apperrors.ErrConflict, campaignID, observed.CurrentAmount, observed.Status)
}
