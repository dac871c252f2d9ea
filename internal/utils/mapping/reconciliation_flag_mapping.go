package mapping

import (
	"database/sql"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
)

// ToModelReconciliationFlag converts a domain flag to its row shape.
func ToModelReconciliationFlag(d domain.ReconciliationFlag) models.ReconciliationFlag {
	m := models.ReconciliationFlag{
		FlagID:          d.FlagID,
		Kind:            string(d.Kind),
		Operation:       d.Operation,
		CampaignID:      toNullString(d.CampaignID),
		ContractAddress: toNullString(d.ContractAddress),
		TransactionHash: toNullString(d.TransactionHash),
		Details:         d.Details,
		CreatedAt:       d.CreatedAt,
	}
	if d.ResolvedAt != nil {
		m.ResolvedAt = sql.NullTime{Time: *d.ResolvedAt, Valid: true}
	}
	if d.ResolutionNote != nil {
		m.ResolutionNote = sql.NullString{String: *d.ResolutionNote, Valid: true}
	}
	return m
}

// ToDomainReconciliationFlag converts a reconciliation_flags row to a domain flag.
func ToDomainReconciliationFlag(m models.ReconciliationFlag) domain.ReconciliationFlag {
	d := domain.ReconciliationFlag{
		FlagID:          m.FlagID,
		Kind:            domain.FlagKind(m.Kind),
		Operation:       m.Operation,
		CampaignID:      fromNullString(m.CampaignID),
		ContractAddress: fromNullString(m.ContractAddress),
		TransactionHash: fromNullString(m.TransactionHash),
		Details:         m.Details,
		CreatedAt:       m.CreatedAt,
	}
	if m.ResolvedAt.Valid {
		resolvedAt := m.ResolvedAt.Time
		d.ResolvedAt = &resolvedAt
	}
	if m.ResolutionNote.Valid {
		note := m.ResolutionNote.String
		d.ResolutionNote = &note
	}
	return d
}
