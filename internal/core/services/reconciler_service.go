package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/platform/metrics"
	"github.com/SscSPs/fundraising_app/internal/platform/tracing"
	"github.com/google/uuid"
)

const (
	defaultFlagPageSize = 100
	maxFlagPageSize     = 500
)

type reconcilerService struct {
	BaseService
	campaignRepo   portsrepo.CampaignReader
	flagRepo       portsrepo.ReconciliationFlagRepositoryFacade
	txManager      portsrepo.TransactionManager
	ledger         gateways.LedgerGateway
	casMaxAttempts int
	now            func() time.Time
}

// ReconcilerOption is a functional option for configuring the reconciler
type ReconcilerOption func(*reconcilerService)

// WithReconcilerLedger enables comparing mirror totals against the ledger during a pass.
func WithReconcilerLedger(ledger gateways.LedgerGateway) ReconcilerOption {
	return func(s *reconcilerService) {
		s.ledger = ledger
	}
}

// WithReconcilerCASMaxAttempts sets how many lost compare-and-sets a roll-up tolerates.
func WithReconcilerCASMaxAttempts(n int) ReconcilerOption {
	return func(s *reconcilerService) {
		if n > 0 {
			s.casMaxAttempts = n
		}
	}
}

// WithReconcilerClock overrides the clock.
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(s *reconcilerService) {
		s.now = now
	}
}

// WithReconcilerLogger sets the logger used outside request scope.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(s *reconcilerService) {
		s.Logger = logger
	}
}

// NewReconcilerService creates the reconciler over the mirror store.
func NewReconcilerService(repos portsrepo.RepositoryProvider, options ...ReconcilerOption) portssvc.ReconcilerSvc {
	svc := &reconcilerService{
		campaignRepo:   repos.CampaignRepo,
		flagRepo:       repos.FlagRepo,
		txManager:      repos.TxManager,
		casMaxAttempts: DefaultCASMaxAttempts,
		now:            time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconcilerSvc = (*reconcilerService)(nil)

// RollUpCampaign sets the campaign amount to the sum of its donations when the sum is ahead.
// A sum below the recorded amount is never applied; it raises ROLLUP_DIVERGENCE instead.
func (s *reconcilerService) RollUpCampaign(ctx context.Context, campaignID string) (*domain.RollUpResult, error) {
	const op = "RollUpCampaign"
	ctx, span := tracing.StartServiceSpan(ctx, op, campaignID)
	defer span.End()

	if strings.TrimSpace(campaignID) == "" {
		return nil, apperrors.Validation("campaign id is required").WithOperation(op)
	}

	for attempt := 1; ; attempt++ {
		result, raised, err := s.rollUpOnce(ctx, campaignID)
		if err == nil {
			if raised != nil {
				metrics.ReconciliationFlagsTotal.WithLabelValues(string(raised.Kind)).Inc()
				s.LogWarn(ctx, "Donation sum is below the recorded campaign amount",
					slog.String("campaign_id", campaignID),
					slog.String("recorded", result.PreviousAmount.String()),
					slog.String("donation_sum", result.DonationSum.String()),
					slog.String("flag_id", raised.FlagID))
			}
			if result.Updated {
				metrics.RollUpUpdates.Inc()
				s.LogInfo(ctx, "Campaign rolled up",
					slog.String("campaign_id", campaignID),
					slog.String("from", result.PreviousAmount.String()),
					slog.String("to", result.DonationSum.String()),
					slog.String("status", string(result.Status)))
			}
			return result, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) || attempt >= s.casMaxAttempts {
			return nil, s.repoError(err, op, campaignID, "failed to roll up campaign")
		}
		metrics.CompareAndSetRetries.WithLabelValues(op).Inc()
	}
}

func (s *reconcilerService) rollUpOnce(ctx context.Context, campaignID string) (*domain.RollUpResult, *domain.ReconciliationFlag, error) {
	var (
		result *domain.RollUpResult
		raised *domain.ReconciliationFlag
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.MirrorTx) error {
		campaign, err := tx.FindCampaignByID(ctx, campaignID)
		if err != nil {
			return err
		}
		donations, err := tx.FindDonationsByCampaign(ctx, campaignID)
		if err != nil {
			return err
		}
		sum := domain.SumAmounts(donations)
		result = &domain.RollUpResult{
			CampaignID:     campaignID,
			PreviousAmount: campaign.CurrentAmount,
			DonationSum:    sum,
			PreviousStatus: campaign.Status,
			Status:         campaign.Status,
		}

		if sum.LessThan(campaign.CurrentAmount) {
			result.Flagged = true
			open, err := tx.ListOpenFlags(ctx, 0)
			if err != nil {
				return err
			}
			if hasOpenFlag(open, domain.FlagRollupDivergence, campaignID) {
				return nil
			}
			flag := domain.ReconciliationFlag{
				FlagID:          uuid.NewString(),
				Kind:            domain.FlagRollupDivergence,
				Operation:       "RollUpCampaign",
				CampaignID:      campaignID,
				ContractAddress: campaign.ContractAddress,
				Details:         fmt.Sprintf("recorded=%s donation_sum=%s donations=%d", campaign.CurrentAmount, sum, len(donations)),
				CreatedAt:       s.now(),
			}
			if err := tx.SaveFlag(ctx, flag); err != nil {
				return err
			}
			raised = &flag
			return nil
		}

		next := domain.CampaignState{
			CurrentAmount: sum,
			Status:        domain.EvaluateStatus(campaign.Status, sum, campaign.TargetAmount),
		}
		if next.Equal(campaign.State()) {
			return nil
		}
		updated, err := tx.UpdateCampaignAmountAndStatus(ctx, campaignID, campaign.State(), next, domain.StateChange{At: s.now()})
		if err != nil {
			return err
		}
		result.Status = updated.Status
		result.Updated = true
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, raised, nil
}

// RunPass rolls up every campaign that can still change and, with a ledger configured,
// compares each mirror total against the ledger's own.
func (s *reconcilerService) RunPass(ctx context.Context) (*domain.ReconciliationReport, error) {
	const op = "RunPass"
	ctx, span := tracing.StartServiceSpan(ctx, op, "")
	defer span.End()

	report := &domain.ReconciliationReport{StartedAt: s.now()}
	campaigns, err := s.campaignRepo.FindCampaignsByStatus(ctx, domain.StatusActive, domain.StatusFunded)
	if err != nil {
		return nil, s.repoError(err, op, "", "failed to list campaigns to reconcile")
	}
	open, err := s.flagRepo.ListOpenFlags(ctx, 0)
	if err != nil {
		return nil, s.repoError(err, op, "", "failed to list open flags")
	}

	for _, campaign := range campaigns {
		if ctx.Err() != nil {
			break
		}
		report.Checked++
		result, err := s.RollUpCampaign(ctx, campaign.CampaignID)
		if err != nil {
			report.Failed++
			s.LogError(ctx, err, "Roll-up failed", slog.String("campaign_id", campaign.CampaignID))
			continue
		}
		if result.Updated {
			report.Updated++
		}
		if s.ledger != nil {
			if kind, raised := s.compareWithLedger(ctx, campaign, result, open); raised {
				result.Flagged = true
				open = append(open, domain.ReconciliationFlag{Kind: kind, CampaignID: campaign.CampaignID})
			}
		}
		if result.Flagged {
			report.Flagged++
		}
		report.Results = append(report.Results, *result)
	}

	report.FinishedAt = s.now()
	s.LogInfo(ctx, "Reconciliation pass finished",
		slog.Int("checked", report.Checked),
		slog.Int("updated", report.Updated),
		slog.Int("flagged", report.Flagged),
		slog.Int("failed", report.Failed),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report, ctx.Err()
}

// compareWithLedger raises at most one flag per campaign and kind while earlier ones are open.
func (s *reconcilerService) compareWithLedger(ctx context.Context, campaign domain.Campaign, result *domain.RollUpResult, open []domain.ReconciliationFlag) (domain.FlagKind, bool) {
	state, err := s.ledger.QueryCampaign(ctx, campaign.ContractAddress, campaign.CampaignID)
	if err != nil {
		s.LogError(ctx, err, "Ledger query failed during reconciliation",
			slog.String("campaign_id", campaign.CampaignID),
			slog.String("contract_address", campaign.ContractAddress))
		return "", false
	}

	mirrored := result.PreviousAmount
	if result.Updated {
		mirrored = result.DonationSum
	}
	status := result.Status

	var (
		kind    domain.FlagKind
		details string
	)
	switch {
	case mirrored.GreaterThan(state.RaisedAmount):
		kind = domain.FlagMirrorExceedsLedger
		details = fmt.Sprintf("mirror=%s ledger=%s", mirrored, state.RaisedAmount)
	case mirrored.LessThan(state.RaisedAmount):
		kind = domain.FlagUnrecordedDonation
		details = fmt.Sprintf("mirror=%s ledger=%s missing=%s", mirrored, state.RaisedAmount, state.RaisedAmount.Sub(mirrored))
	case state.Withdrawn && status != domain.StatusWithdrawn:
		kind = domain.FlagWithdrawalUnsynced
		details = fmt.Sprintf("ledger reports withdrawn, mirror status %s", status)
	default:
		return "", false
	}
	if hasOpenFlag(open, kind, campaign.CampaignID) {
		return kind, false
	}
	saveFlag(ctx, &s.BaseService, s.flagRepo, s.now(), domain.ReconciliationFlag{
		Kind:            kind,
		Operation:       "RunPass",
		CampaignID:      campaign.CampaignID,
		ContractAddress: campaign.ContractAddress,
		Details:         details,
	})
	return kind, true
}

func (s *reconcilerService) ListOpenFlags(ctx context.Context, limit int) ([]domain.ReconciliationFlag, error) {
	if limit <= 0 {
		limit = defaultFlagPageSize
	}
	if limit > maxFlagPageSize {
		limit = maxFlagPageSize
	}
	flags, err := s.flagRepo.ListOpenFlags(ctx, limit)
	if err != nil {
		return nil, s.repoError(err, "ListOpenFlags", "", "failed to list open flags")
	}
	return flags, nil
}

func (s *reconcilerService) ResolveFlag(ctx context.Context, flagID string, note string) error {
	const op = "ResolveFlag"
	if strings.TrimSpace(flagID) == "" {
		return apperrors.Validation("flag id is required").WithOperation(op)
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return apperrors.Validation("a resolution note is required").WithOperation(op)
	}
	if err := s.flagRepo.ResolveFlag(ctx, flagID, note, s.now()); err != nil {
		return s.repoError(err, op, "", "failed to resolve flag "+flagID)
	}
	s.LogInfo(ctx, "Reconciliation flag resolved", slog.String("flag_id", flagID))
	return nil
}

func (s *reconcilerService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.LogInfo(ctx, "Reconciler started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.LogInfo(ctx, "Reconciler stopped")
			return
		case <-ticker.C:
			if _, err := s.RunPass(ctx); err != nil && ctx.Err() == nil {
				s.LogError(ctx, err, "Reconciliation pass failed")
			}
		}
	}
}
