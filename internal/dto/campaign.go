package dto

import (
	"time"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCampaignRequest defines the data needed to create a new campaign.
// The creator is the authenticated caller.
type CreateCampaignRequest struct {
	Title        string          `json:"title" binding:"required,max=255"`
	Description  string          `json:"description" binding:"max=1000"`
	TargetAmount decimal.Decimal `json:"targetAmount" swaggertype:"string" example:"1000000000000000000"` // Integer in the ledger unit
	EndDate      int64           `json:"endDate" binding:"required"`                                      // Unix seconds
}

// CampaignResponse defines the data returned for a campaign.
type CampaignResponse struct {
	CampaignID          string                `json:"campaignID"`
	ContractAddress     string                `json:"contractAddress"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	TargetAmount        decimal.Decimal       `json:"targetAmount" swaggertype:"string"`
	CurrentAmount       decimal.Decimal       `json:"currentAmount" swaggertype:"string"`
	CreatorAddress      string                `json:"creatorAddress"`
	StartDate           int64                 `json:"startDate"`
	EndDate             int64                 `json:"endDate"`
	Status              domain.CampaignStatus `json:"status"`
	Expired             bool                  `json:"expired"` // End date passed; status is unaffected
	LastTransactionHash string                `json:"lastTransactionHash,omitempty"`
	CreatedAt           time.Time             `json:"createdAt"`
	LastUpdatedAt       time.Time             `json:"lastUpdatedAt"`
}

// ToCampaignResponse converts a domain.Campaign to CampaignResponse, computing expiry at now.
func ToCampaignResponse(c *domain.Campaign, now time.Time) CampaignResponse {
	return CampaignResponse{
		CampaignID:          c.CampaignID,
		ContractAddress:     c.ContractAddress,
		Title:               c.Title,
		Description:         c.Description,
		TargetAmount:        c.TargetAmount,
		CurrentAmount:       c.CurrentAmount,
		CreatorAddress:      c.CreatorAddress,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		Status:              c.Status,
		Expired:             c.Status == domain.StatusActive && c.IsExpired(now),
		LastTransactionHash: c.LastTransactionHash,
		CreatedAt:           c.CreatedAt,
		LastUpdatedAt:       c.LastUpdatedAt,
	}
}

// ToListCampaignResponse converts a slice of domain.Campaign.
func ToListCampaignResponse(campaigns []domain.Campaign, now time.Time) ListCampaignsResponse {
	res := make([]CampaignResponse, len(campaigns))
	for i := range campaigns {
		res[i] = ToCampaignResponse(&campaigns[i], now)
	}
	return ListCampaignsResponse{Campaigns: res}
}

// ListCampaignsParams defines query parameters for listing campaigns.
type ListCampaignsParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// ListCampaignsResponse wraps a list of campaigns.
type ListCampaignsResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
}

// CreatorParams binds the creator address path parameter.
type CreatorParams struct {
	CreatorAddress string `uri:"creatorAddress" binding:"required,ethaddr"`
}

// WithdrawalResponse is returned by a confirmed withdrawal.
type WithdrawalResponse struct {
	Campaign        CampaignResponse `json:"campaign"`
	TransactionHash string           `json:"transactionHash"`
	MirrorUpdated   bool             `json:"mirrorUpdated"`
}

// ToWithdrawalResponse converts a domain.Withdrawal.
func ToWithdrawalResponse(w *domain.Withdrawal, now time.Time) WithdrawalResponse {
	return WithdrawalResponse{
		Campaign:        ToCampaignResponse(&w.Campaign, now),
		TransactionHash: w.TransactionHash,
		MirrorUpdated:   w.MirrorUpdated,
	}
}
