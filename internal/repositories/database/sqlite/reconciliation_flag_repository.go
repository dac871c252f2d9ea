package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
	"github.com/SscSPs/fundraising_app/internal/utils/mapping"
)

const flagColumns = `flag_id, kind, operation, campaign_id, contract_address, transaction_hash, details, created_at, resolved_at, resolution_note`

// SaveFlag inserts a reconciliation flag.
func (q *sqlQueries) SaveFlag(ctx context.Context, flag domain.ReconciliationFlag) error {
	m := mapping.ToModelReconciliationFlag(flag)

	var resolvedAt any
	if m.ResolvedAt.Valid {
		resolvedAt = formatTime(m.ResolvedAt.Time)
	}

	query := `INSERT INTO reconciliation_flags (` + flagColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := q.db.ExecContext(ctx, query,
		m.FlagID,
		m.Kind,
		m.Operation,
		nullString(m.CampaignID),
		nullString(m.ContractAddress),
		nullString(m.TransactionHash),
		m.Details,
		formatTime(m.CreatedAt),
		resolvedAt,
		nullString(m.ResolutionNote),
	)
	if err != nil {
		return fmt.Errorf("failed to save reconciliation flag %s: %w", m.FlagID, err)
	}
	return nil
}

// ListOpenFlags returns unresolved flags, oldest first.
func (q *sqlQueries) ListOpenFlags(ctx context.Context, limit int) ([]domain.ReconciliationFlag, error) {
	query := `SELECT ` + flagColumns + ` FROM reconciliation_flags WHERE resolved_at IS NULL ORDER BY created_at, flag_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query open reconciliation flags: %w", err)
	}
	defer rows.Close()

	flags := []domain.ReconciliationFlag{}
	for rows.Next() {
		var (
			m          models.ReconciliationFlag
			createdAt  string
			resolvedAt sql.NullString
		)
		if err := rows.Scan(
			&m.FlagID,
			&m.Kind,
			&m.Operation,
			&m.CampaignID,
			&m.ContractAddress,
			&m.TransactionHash,
			&m.Details,
			&createdAt,
			&resolvedAt,
			&m.ResolutionNote,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation flag row: %w", err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("reconciliation flag %s has malformed created_at: %w", m.FlagID, err)
		}
		flags = append(flags, mapping.ToDomainReconciliationFlag(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation flags: %w", err)
	}
	return flags, nil
}

// ResolveFlag closes an open flag with an operator note.
func (q *sqlQueries) ResolveFlag(ctx context.Context, flagID string, note string, at time.Time) error {
	query := `UPDATE reconciliation_flags SET resolved_at = ?, resolution_note = ? WHERE flag_id = ? AND resolved_at IS NULL;`
	res, err := q.db.ExecContext(ctx, query, formatTime(at), note, flagID)
	if err != nil {
		return fmt.Errorf("failed to resolve reconciliation flag %s: %w", flagID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for flag %s: %w", flagID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: open reconciliation flag %s", apperrors.ErrNotFound, flagID)
	}
	return nil
}
