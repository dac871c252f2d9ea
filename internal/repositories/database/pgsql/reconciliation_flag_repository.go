package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
	"github.com/SscSPs/fundraising_app/internal/utils/mapping"
)

const flagColumns = `flag_id, kind, operation, campaign_id, contract_address, transaction_hash, details, created_at, resolved_at, resolution_note`

// SaveFlag inserts a reconciliation flag.
func (q *pgxQueries) SaveFlag(ctx context.Context, flag domain.ReconciliationFlag) error {
	m := mapping.ToModelReconciliationFlag(flag)

	query := `
		INSERT INTO reconciliation_flags (` + flagColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := q.db.Exec(ctx, query,
		m.FlagID,
		m.Kind,
		m.Operation,
		m.CampaignID,
		m.ContractAddress,
		m.TransactionHash,
		m.Details,
		m.CreatedAt,
		m.ResolvedAt,
		m.ResolutionNote,
	)
	if err != nil {
		return fmt.Errorf("failed to save reconciliation flag %s: %w", m.FlagID, err)
	}
	return nil
}

// ListOpenFlags returns unresolved flags, oldest first.
func (q *pgxQueries) ListOpenFlags(ctx context.Context, limit int) ([]domain.ReconciliationFlag, error) {
	query := `SELECT ` + flagColumns + ` FROM reconciliation_flags WHERE resolved_at IS NULL ORDER BY created_at, flag_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query open reconciliation flags: %w", err)
	}
	defer rows.Close()

	flags := []domain.ReconciliationFlag{}
	for rows.Next() {
		var m models.ReconciliationFlag
		if err := rows.Scan(
			&m.FlagID,
			&m.Kind,
			&m.Operation,
			&m.CampaignID,
			&m.ContractAddress,
			&m.TransactionHash,
			&m.Details,
			&m.CreatedAt,
			&m.ResolvedAt,
			&m.ResolutionNote,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation flag row: %w", err)
		}
		flags = append(flags, mapping.ToDomainReconciliationFlag(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation flags: %w", err)
	}
	return flags, nil
}

// ResolveFlag closes an open flag with an operator note.
func (q *pgxQueries) ResolveFlag(ctx context.Context, flagID string, note string, at time.Time) error {
	query := `
		UPDATE reconciliation_flags
		SET resolved_at = $2, resolution_note = $3
		WHERE flag_id = $1 AND resolved_at IS NULL;
	`
	tag, err := q.db.Exec(ctx, query, flagID, at, note)
	if err != nil {
		return fmt.Errorf("failed to resolve reconciliation flag %s: %w", flagID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: open reconciliation flag %s", apperrors.ErrNotFound, flagID)
	}
	return nil
}
