package mapping

import (
	"database/sql"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/models"
)

// ToModelCampaign converts a domain.Campaign to its row shape.
func ToModelCampaign(d domain.Campaign) models.Campaign {
	return models.Campaign{
		CampaignID:          d.CampaignID,
		ContractAddress:     d.ContractAddress,
		Title:               d.Title,
		Description:         d.Description,
		TargetAmount:        d.TargetAmount,
		CurrentAmount:       d.CurrentAmount,
		CreatorAddress:      d.CreatorAddress,
		StartDate:           d.StartDate,
		EndDate:             d.EndDate,
		Status:              models.CampaignStatus(d.Status),
		LastTransactionHash: toNullString(d.LastTransactionHash),
		Version:             d.Version,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCampaign converts a campaigns row to a domain.Campaign.
func ToDomainCampaign(m models.Campaign) domain.Campaign {
	return domain.Campaign{
		CampaignID:          m.CampaignID,
		ContractAddress:     m.ContractAddress,
		Title:               m.Title,
		Description:         m.Description,
		TargetAmount:        m.TargetAmount,
		CurrentAmount:       m.CurrentAmount,
		CreatorAddress:      m.CreatorAddress,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Status:              domain.CampaignStatus(m.Status),
		LastTransactionHash: m.LastTransactionHash.String,
		Version:             m.Version,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCampaigns converts a slice of rows.
func ToDomainCampaigns(ms []models.Campaign) []domain.Campaign {
	ds := make([]domain.Campaign, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCampaign(m)
	}
	return ds
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
