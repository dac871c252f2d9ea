package services

import (
	"context"
	"time"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
)

// ReconcilerSvc repairs the mirror after partial failures and surfaces what needs an operator.
type ReconcilerSvc interface {
	// RollUpCampaign recomputes a campaign's amount from its donations.
	RollUpCampaign(ctx context.Context, campaignID string) (*domain.RollUpResult, error)

	// RunPass rolls up every open campaign and compares it against the ledger.
	RunPass(ctx context.Context) (*domain.ReconciliationReport, error)

	ListOpenFlags(ctx context.Context, limit int) ([]domain.ReconciliationFlag, error)

	ResolveFlag(ctx context.Context, flagID string, note string) error

	// Run repeats RunPass every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration)
}
