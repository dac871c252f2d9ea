package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fundraising_app/internal/core/ports/services"
	"github.com/SscSPs/fundraising_app/internal/dto"
	"github.com/SscSPs/fundraising_app/internal/platform/metrics"
	"github.com/SscSPs/fundraising_app/internal/platform/tracing"
	"github.com/SscSPs/fundraising_app/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCASMaxAttempts bounds compare-and-set retries on the campaign row.
	DefaultCASMaxAttempts = 5

	defaultPageSize = 20
	maxPageSize     = 100

	maxTitleLength       = 255
	maxDescriptionLength = 1000
)

var (
	// errReplayed rolls back a transaction whose donation was already recorded.
	errReplayed = errors.New("donation already recorded")
	// errUnbacked rolls back a receipt that would lift the mirror past the ledger's raised amount.
	errUnbacked = errors.New("receipt not backed by the ledger")
)

// campaignService keeps the local mirror in step with ledger effects.
type campaignService struct {
	BaseService
	campaignRepo   portsrepo.CampaignReader
	donationRepo   portsrepo.DonationReader
	flagRepo       portsrepo.ReconciliationFlagWriter
	txManager      portsrepo.TransactionManager
	ledger         gateways.LedgerGateway
	casMaxAttempts int
	now            func() time.Time

	inflight sync.WaitGroup
}

// CampaignServiceOption is a functional option for configuring the campaign service
type CampaignServiceOption func(*campaignService)

// WithCASMaxAttempts sets how many times a roll-up retries a lost compare-and-set.
func WithCASMaxAttempts(n int) CampaignServiceOption {
	return func(s *campaignService) {
		if n > 0 {
			s.casMaxAttempts = n
		}
	}
}

// WithCampaignClock overrides the clock used for expiry and audit timestamps.
func WithCampaignClock(now func() time.Time) CampaignServiceOption {
	return func(s *campaignService) {
		s.now = now
	}
}

// WithCampaignLogger sets the logger used outside request scope.
func WithCampaignLogger(logger *slog.Logger) CampaignServiceOption {
	return func(s *campaignService) {
		s.Logger = logger
	}
}

// NewCampaignService creates the campaign service over the mirror store and the ledger.
func NewCampaignService(repos portsrepo.RepositoryProvider, ledger gateways.LedgerGateway, options ...CampaignServiceOption) portssvc.CampaignSvcFacade {
	svc := &campaignService{
		campaignRepo:   repos.CampaignRepo,
		donationRepo:   repos.DonationRepo,
		flagRepo:       repos.FlagRepo,
		txManager:      repos.TxManager,
		ledger:         ledger,
		casMaxAttempts: DefaultCASMaxAttempts,
		now:            time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CampaignSvcFacade = (*campaignService)(nil)

// Wait blocks until every detached ledger operation has finished recording its outcome.
func (s *campaignService) Wait() {
	s.inflight.Wait()
}

func (s *campaignService) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	if strings.TrimSpace(campaignID) == "" {
		return nil, apperrors.Validation("campaign id is required").WithOperation("GetCampaign")
	}
	campaign, err := s.campaignRepo.FindCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, s.repoError(err, "GetCampaign", campaignID, "campaign not found")
	}
	return campaign, nil
}

func (s *campaignService) GetAllCampaigns(ctx context.Context, limit int, offset int) ([]domain.Campaign, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	campaigns, err := s.campaignRepo.ListCampaigns(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list campaigns", slog.Int("limit", limit), slog.Int("offset", offset))
		return nil, s.repoError(err, "GetAllCampaigns", "", "failed to list campaigns")
	}
	return campaigns, nil
}

func (s *campaignService) GetActiveCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.campaignRepo.FindCampaignsByStatus(ctx, domain.StatusActive)
	if err != nil {
		return nil, s.repoError(err, "GetActiveCampaigns", "", "failed to list active campaigns")
	}
	return campaigns, nil
}

func (s *campaignService) GetFundedCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.campaignRepo.FindCampaignsByStatus(ctx, domain.StatusFunded)
	if err != nil {
		return nil, s.repoError(err, "GetFundedCampaigns", "", "failed to list funded campaigns")
	}
	return campaigns, nil
}

func (s *campaignService) GetCampaignsByCreator(ctx context.Context, creatorAddress string) ([]domain.Campaign, error) {
	creator, ok := utils.NormalizeAddress(creatorAddress)
	if !ok {
		return nil, apperrors.Validation("creator address %q is not a valid address", creatorAddress).WithOperation("GetCampaignsByCreator")
	}
	campaigns, err := s.campaignRepo.FindCampaignsByCreator(ctx, creator)
	if err != nil {
		return nil, s.repoError(err, "GetCampaignsByCreator", "", "failed to list campaigns by creator")
	}
	return campaigns, nil
}

func (s *campaignService) GetCampaignDonations(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	if _, err := s.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	donations, err := s.donationRepo.FindDonationsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, s.repoError(err, "GetCampaignDonations", campaignID, "failed to list donations")
	}
	return donations, nil
}

// CreateCampaign deploys a campaign contract and records the mirror row once the deploy is confirmed.
func (s *campaignService) CreateCampaign(ctx context.Context, req dto.CreateCampaignRequest, creatorAddress string) (*domain.Campaign, error) {
	const op = "CreateCampaign"
	ctx, span := tracing.StartServiceSpan(ctx, op, "")
	defer span.End()

	creator, ok := utils.NormalizeAddress(creatorAddress)
	if !ok {
		return nil, apperrors.Validation("creator address %q is not a valid address", creatorAddress).WithOperation(op)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("title is required").WithOperation(op)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, apperrors.Validation("title must be at most %d characters", maxTitleLength).WithOperation(op)
	}
	if utf8.RuneCountInString(req.Description) > maxDescriptionLength {
		return nil, apperrors.Validation("description must be at most %d characters", maxDescriptionLength).WithOperation(op)
	}
	if !domain.IsWholePositive(req.TargetAmount) {
		return nil, apperrors.Validation("target amount must be a positive whole number, got %s", req.TargetAmount).WithOperation(op)
	}
	now := s.now()
	if req.EndDate <= now.Unix() {
		return nil, apperrors.Validation("end date must be in the future").WithOperation(op)
	}

	campaign := domain.Campaign{
		CampaignID:     uuid.NewString(),
		Title:          title,
		Description:    req.Description,
		TargetAmount:   req.TargetAmount,
		CurrentAmount:  decimal.Zero,
		CreatorAddress: creator,
		EndDate:        req.EndDate,
		Status:         domain.StatusActive,
		Version:        1,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	deploy := domain.DeployCampaign{
		IdempotencyKey: campaign.CampaignID,
		Title:          campaign.Title,
		Description:    campaign.Description,
		TargetAmount:   campaign.TargetAmount,
		EndDate:        campaign.EndDate,
		CreatorAddress: creator,
	}

	return runDetached(ctx, s, op, campaign.CampaignID, func(ctx context.Context) (*domain.Campaign, error) {
		receipt, err := s.ledger.Submit(ctx, deploy)
		if err != nil {
			return nil, s.ledgerFailure(ctx, op, &campaign, deploy, err)
		}
		campaign.ContractAddress = receipt.ContractAddress
		campaign.LastTransactionHash = receipt.TransactionHash
		campaign.StartDate = receipt.BlockTimestamp

		err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.MirrorTx) error {
			return tx.InsertCampaign(ctx, campaign)
		})
		if err != nil {
			s.LogError(ctx, err, "Deployed contract could not be recorded",
				slog.String("campaign_id", campaign.CampaignID),
				slog.String("contract_address", campaign.ContractAddress))
			saveFlag(ctx, &s.BaseService, s.flagRepo, s.now(), domain.ReconciliationFlag{
				Kind:            domain.FlagOrphanedContract,
				Operation:       op,
				CampaignID:      campaign.CampaignID,
				ContractAddress: campaign.ContractAddress,
				TransactionHash: campaign.LastTransactionHash,
				Details:         fmt.Sprintf("title=%q creator=%s target=%s: %v", campaign.Title, creator, campaign.TargetAmount, err),
			})
			return nil, apperrors.NewAppError(apperrors.KindInconsistency, "contract deployed but the campaign could not be recorded", err).
				WithOperation(op).
				WithCampaign(campaign.CampaignID).
				WithContract(campaign.ContractAddress).
				WithTransaction(campaign.LastTransactionHash)
		}

		s.LogInfo(ctx, "Campaign created",
			slog.String("campaign_id", campaign.CampaignID),
			slog.String("contract_address", campaign.ContractAddress),
			slog.String("transaction_hash", campaign.LastTransactionHash))
		return &campaign, nil
	})
}

// Donate records a donation on the ledger, then adds it to the mirror and rolls the campaign amount forward.
func (s *campaignService) Donate(ctx context.Context, campaignID string, req dto.DonateRequest, donorAddress string) (*domain.Donation, error) {
	const op = "Donate"
	ctx, span := tracing.StartServiceSpan(ctx, op, campaignID)
	defer span.End()

	donor, ok := utils.NormalizeAddress(donorAddress)
	if !ok {
		return nil, apperrors.Validation("donor address %q is not a valid address", donorAddress).WithOperation(op).WithCampaign(campaignID)
	}
	if !domain.IsWholePositive(req.Amount) {
		return nil, apperrors.Validation("donation amount must be a positive whole number, got %s", req.Amount).WithOperation(op).WithCampaign(campaignID)
	}
	campaign, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.StatusActive {
		return nil, apperrors.NewAppError(apperrors.KindStateConflict, fmt.Sprintf("campaign is %s, donations need an active campaign", campaign.Status), nil).
			WithOperation(op).
			WithCampaign(campaignID)
	}

	record := domain.RecordDonation{
		IdempotencyKey:  uuid.NewString(),
		ContractAddress: campaign.ContractAddress,
		CampaignRef:     campaign.CampaignID,
		DonorAddress:    donor,
		Amount:          req.Amount,
	}

	return runDetached(ctx, s, op, campaignID, func(ctx context.Context) (*domain.Donation, error) {
		receipt, err := s.ledger.Submit(ctx, record)
		if err != nil {
			return nil, s.ledgerFailure(ctx, op, campaign, record, err)
		}
		donation := domain.Donation{
			DonationID:      uuid.NewString(),
			CampaignID:      campaignID,
			DonorAddress:    donor,
			Amount:          receipt.Amount,
			TransactionHash: receipt.TransactionHash,
			LedgerTimestamp: receipt.BlockTimestamp,
			CreatedAt:       s.now(),
		}
		recorded, err := s.recordDonation(ctx, op, donation, nil)
		if unrecorded(err) {
			s.LogError(ctx, err, "Confirmed donation could not be recorded",
				slog.String("campaign_id", campaignID),
				slog.String("transaction_hash", donation.TransactionHash))
			saveFlag(ctx, &s.BaseService, s.flagRepo, s.now(), domain.ReconciliationFlag{
				Kind:            domain.FlagUnrecordedDonation,
				Operation:       op,
				CampaignID:      campaignID,
				ContractAddress: campaign.ContractAddress,
				TransactionHash: donation.TransactionHash,
				Details:         fmt.Sprintf("donor=%s amount=%s ledger_timestamp=%d: %v", donor, donation.Amount, donation.LedgerTimestamp, err),
			})
			return nil, apperrors.NewAppError(apperrors.KindInconsistency, "donation confirmed on the ledger but not recorded locally", err).
				WithOperation(op).
				WithCampaign(campaignID).
				WithTransaction(donation.TransactionHash)
		}
		return recorded, err
	})
}

// ApplyDonationReceipt records a donation the ledger confirmed without going through Donate.
// Applying the same receipt twice returns the first result. A receipt is refused when the mirror's
// recorded donations plus its amount would exceed what the ledger reports as raised.
func (s *campaignService) ApplyDonationReceipt(ctx context.Context, campaignID string, req dto.DonationReceipt) (*domain.Donation, error) {
	const op = "ApplyDonationReceipt"
	ctx, span := tracing.StartServiceSpan(ctx, op, campaignID)
	defer span.End()

	donor, ok := utils.NormalizeAddress(req.DonorAddress)
	if !ok {
		return nil, apperrors.Validation("donor address %q is not a valid address", req.DonorAddress).WithOperation(op).WithCampaign(campaignID)
	}
	if !domain.IsWholePositive(req.Amount) {
		return nil, apperrors.Validation("donation amount must be a positive whole number, got %s", req.Amount).WithOperation(op).WithCampaign(campaignID)
	}
	txHash := strings.TrimSpace(req.TransactionHash)
	if txHash == "" {
		return nil, apperrors.Validation("transaction hash is required").WithOperation(op).WithCampaign(campaignID)
	}
	campaign, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	existing, err := s.donationRepo.FindDonationByTransactionHash(ctx, txHash)
	switch {
	case err == nil:
		return checkReplay(op, existing, campaignID, req.Amount)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, s.repoError(err, op, campaignID, "failed to look up donation")
	}

	if campaign.Status.IsTerminal() {
		return nil, apperrors.NewAppError(apperrors.KindStateConflict, "campaign funds were already withdrawn", nil).
			WithOperation(op).
			WithCampaign(campaignID).
			WithTransaction(txHash)
	}

	state, err := s.ledger.QueryCampaign(ctx, campaign.ContractAddress, campaign.CampaignID)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.NewAppError(apperrors.KindLedgerFatal, "ledger campaign query failed", err)
		}
		s.LogError(ctx, err, "Could not confirm receipt against the ledger",
			slog.String("campaign_id", campaignID),
			slog.String("transaction_hash", txHash))
		return nil, appErr.WithOperation(op).WithCampaign(campaignID).WithContract(campaign.ContractAddress)
	}

	ledgerTimestamp := req.LedgerTimestamp
	if ledgerTimestamp <= 0 {
		ledgerTimestamp = s.now().Unix()
	}
	raised := state.RaisedAmount
	return s.recordDonation(ctx, op, domain.Donation{
		DonationID:      uuid.NewString(),
		CampaignID:      campaignID,
		DonorAddress:    donor,
		Amount:          req.Amount,
		TransactionHash: txHash,
		LedgerTimestamp: ledgerTimestamp,
		CreatedAt:       s.now(),
	}, &raised)
}

// WithdrawFunds withdraws a funded campaign on the ledger and marks the mirror withdrawn.
// A confirmed withdrawal that cannot be mirrored still succeeds, with MirrorUpdated unset.
func (s *campaignService) WithdrawFunds(ctx context.Context, campaignID string) (*domain.Withdrawal, error) {
	const op = "WithdrawFunds"
	ctx, span := tracing.StartServiceSpan(ctx, op, campaignID)
	defer span.End()

	campaign, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.StatusFunded {
		return nil, apperrors.NewAppError(apperrors.KindStateConflict, fmt.Sprintf("campaign is %s, only funded campaigns can be withdrawn", campaign.Status), nil).
			WithOperation(op).
			WithCampaign(campaignID)
	}

	withdraw := domain.Withdraw{
		IdempotencyKey:  uuid.NewString(),
		ContractAddress: campaign.ContractAddress,
		CampaignRef:     campaign.CampaignID,
	}

	return runDetached(ctx, s, op, campaignID, func(ctx context.Context) (*domain.Withdrawal, error) {
		receipt, err := s.ledger.Submit(ctx, withdraw)
		if err != nil {
			return nil, s.ledgerFailure(ctx, op, campaign, withdraw, err)
		}

		updated, err := s.markWithdrawn(ctx, campaignID, receipt.TransactionHash)
		if err != nil {
			s.LogError(ctx, err, "Confirmed withdrawal could not be mirrored",
				slog.String("campaign_id", campaignID),
				slog.String("transaction_hash", receipt.TransactionHash))
			saveFlag(ctx, &s.BaseService, s.flagRepo, s.now(), domain.ReconciliationFlag{
				Kind:            domain.FlagWithdrawalUnsynced,
				Operation:       op,
				CampaignID:      campaignID,
				ContractAddress: campaign.ContractAddress,
				TransactionHash: receipt.TransactionHash,
				Details:         err.Error(),
			})
			return &domain.Withdrawal{Campaign: *campaign, TransactionHash: receipt.TransactionHash, MirrorUpdated: false}, nil
		}

		s.LogInfo(ctx, "Campaign withdrawn",
			slog.String("campaign_id", campaignID),
			slog.String("transaction_hash", receipt.TransactionHash))
		return &domain.Withdrawal{Campaign: *updated, TransactionHash: receipt.TransactionHash, MirrorUpdated: true}, nil
	})
}

// recordDonation inserts the donation and rolls the campaign forward in one local transaction.
// A non-nil ceiling caps the campaign's recorded donations, this one included.
func (s *campaignService) recordDonation(ctx context.Context, op string, donation domain.Donation, ceiling *decimal.Decimal) (*domain.Donation, error) {
	var (
		existing  *domain.Donation
		contended *domain.ReconciliationFlag
		recorded  decimal.Decimal
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.MirrorTx) error {
		if ceiling != nil {
			found, err := tx.FindDonationByTransactionHash(ctx, donation.TransactionHash)
			if err == nil {
				existing = found
				return errReplayed
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			donations, err := tx.FindDonationsByCampaign(ctx, donation.CampaignID)
			if err != nil {
				return err
			}
			recorded = domain.SumAmounts(donations)
			if recorded.Add(donation.Amount).GreaterThan(*ceiling) {
				return errUnbacked
			}
		}
		if err := tx.InsertDonation(ctx, donation); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				return err
			}
			found, ferr := tx.FindDonationByTransactionHash(ctx, donation.TransactionHash)
			if ferr != nil {
				return ferr
			}
			existing = found
			return errReplayed
		}

		flag, err := s.rollForward(ctx, tx, op, donation)
		if err != nil {
			return err
		}
		if flag != nil {
			if err := tx.SaveFlag(ctx, *flag); err != nil {
				return err
			}
			contended = flag
		}
		return nil
	})

	switch {
	case errors.Is(err, errReplayed):
		s.LogInfo(ctx, "Donation already recorded",
			slog.String("campaign_id", donation.CampaignID),
			slog.String("transaction_hash", donation.TransactionHash))
		return checkReplay(op, existing, donation.CampaignID, donation.Amount)
	case errors.Is(err, errUnbacked):
		s.LogWarn(ctx, "Receipt refused, ledger does not cover it",
			slog.String("campaign_id", donation.CampaignID),
			slog.String("transaction_hash", donation.TransactionHash),
			slog.String("ledger_raised", ceiling.String()),
			slog.String("recorded", recorded.String()),
			slog.String("amount", donation.Amount.String()))
		return nil, apperrors.NewAppError(apperrors.KindStateConflict,
			fmt.Sprintf("ledger reports %s raised, the receipt would bring recorded donations to %s", ceiling, recorded.Add(donation.Amount)), nil).
			WithOperation(op).
			WithCampaign(donation.CampaignID).
			WithTransaction(donation.TransactionHash)
	case err != nil:
		s.LogError(ctx, err, "Failed to record donation",
			slog.String("campaign_id", donation.CampaignID),
			slog.String("transaction_hash", donation.TransactionHash))
		appErr := s.repoError(err, op, donation.CampaignID, "failed to record donation")
		if ae, ok := appErr.(*apperrors.AppError); ok {
			ae.WithTransaction(donation.TransactionHash)
		}
		return nil, appErr
	case contended != nil:
		metrics.ReconciliationFlagsTotal.WithLabelValues(string(contended.Kind)).Inc()
		s.LogWarn(ctx, "Donation recorded without roll-up",
			slog.String("campaign_id", donation.CampaignID),
			slog.String("transaction_hash", donation.TransactionHash),
			slog.String("flag_id", contended.FlagID))
		return nil, apperrors.NewAppError(apperrors.KindContention, "donation recorded but the campaign total is pending reconciliation", nil).
			WithOperation(op).
			WithCampaign(donation.CampaignID).
			WithTransaction(donation.TransactionHash)
	}

	s.LogInfo(ctx, "Donation recorded",
		slog.String("campaign_id", donation.CampaignID),
		slog.String("transaction_hash", donation.TransactionHash),
		slog.String("amount", donation.Amount.String()))
	return &donation, nil
}

// rollForward adds donation to the campaign row by compare-and-set. When every attempt loses
// the race it returns a contention flag for the caller to persist alongside the donation.
func (s *campaignService) rollForward(ctx context.Context, tx portsrepo.MirrorTx, op string, donation domain.Donation) (*domain.ReconciliationFlag, error) {
	observed, err := tx.FindCampaignByID(ctx, donation.CampaignID)
	if err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		next, err := domain.ApplyDonation(observed.State(), donation.Amount, observed.TargetAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStateConflict, err)
		}
		updated, err := tx.UpdateCampaignAmountAndStatus(ctx, donation.CampaignID, observed.State(), next,
			domain.StateChange{TransactionHash: donation.TransactionHash, At: s.now()})
		if err == nil {
			if updated.Status != observed.Status {
				s.LogInfo(ctx, "Campaign status changed",
					slog.String("campaign_id", donation.CampaignID),
					slog.String("from", string(observed.Status)),
					slog.String("to", string(updated.Status)))
			}
			return nil, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}

		metrics.CompareAndSetRetries.WithLabelValues(op).Inc()
		if attempt >= s.casMaxAttempts {
			return &domain.ReconciliationFlag{
				FlagID:          uuid.NewString(),
				Kind:            domain.FlagRollupContention,
				Operation:       op,
				CampaignID:      donation.CampaignID,
				ContractAddress: observed.ContractAddress,
				TransactionHash: donation.TransactionHash,
				Details:         fmt.Sprintf("amount=%s not rolled up after %d attempts", donation.Amount, attempt),
				CreatedAt:       s.now(),
			}, nil
		}
		s.LogDebug(ctx, "Campaign changed underneath roll-up, retrying",
			slog.String("campaign_id", donation.CampaignID),
			slog.Int("attempt", attempt))
		if observed, err = tx.FindCampaignByID(ctx, donation.CampaignID); err != nil {
			return nil, err
		}
	}
}

func (s *campaignService) markWithdrawn(ctx context.Context, campaignID, txHash string) (*domain.Campaign, error) {
	var lastErr error
	for attempt := 1; attempt <= s.casMaxAttempts; attempt++ {
		var result *domain.Campaign
		err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.MirrorTx) error {
			observed, err := tx.FindCampaignByID(ctx, campaignID)
			if err != nil {
				return err
			}
			if observed.Status == domain.StatusWithdrawn {
				result = observed
				return nil
			}
			next := domain.CampaignState{CurrentAmount: observed.CurrentAmount, Status: domain.StatusWithdrawn}
			result, err = tx.UpdateCampaignAmountAndStatus(ctx, campaignID, observed.State(), next,
				domain.StateChange{TransactionHash: txHash, At: s.now()})
			return err
		})
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		metrics.CompareAndSetRetries.WithLabelValues("WithdrawFunds").Inc()
		lastErr = err
	}
	return nil, lastErr
}

// ledgerFailure annotates a ledger error and raises a flag when the outcome is unknown.
func (s *campaignService) ledgerFailure(ctx context.Context, op string, campaign *domain.Campaign, ledgerOp domain.LedgerOperation, err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "ledger outcome unknown", err)
	}
	appErr.WithOperation(op).WithCampaign(campaign.CampaignID)
	if appErr.ContractAddress == "" {
		appErr.WithContract(campaign.ContractAddress)
	}

	if appErr.Kind == apperrors.KindLedgerIndeterminate {
		saveFlag(ctx, &s.BaseService, s.flagRepo, s.now(), domain.ReconciliationFlag{
			Kind:            domain.FlagLedgerIndeterminate,
			Operation:       op,
			CampaignID:      campaign.CampaignID,
			ContractAddress: campaign.ContractAddress,
			TransactionHash: appErr.TransactionHash,
			Details:         describeLedgerOp(ledgerOp) + ": " + appErr.Error(),
		})
	}
	return appErr
}

func describeLedgerOp(op domain.LedgerOperation) string {
	switch o := op.(type) {
	case domain.DeployCampaign:
		return fmt.Sprintf("%s key=%s creator=%s target=%s end=%d", o.OperationName(), o.IdempotencyKey, o.CreatorAddress, o.TargetAmount, o.EndDate)
	case domain.RecordDonation:
		return fmt.Sprintf("%s key=%s donor=%s amount=%s", o.OperationName(), o.IdempotencyKey, o.DonorAddress, o.Amount)
	default:
		return fmt.Sprintf("%s key=%s", op.OperationName(), op.Key())
	}
}

// checkReplay returns the recorded donation when it matches what the caller tried to record.
func checkReplay(op string, existing *domain.Donation, campaignID string, amount decimal.Decimal) (*domain.Donation, error) {
	if existing == nil {
		return nil, apperrors.NewAppError(apperrors.KindInternal, "replayed donation disappeared", nil).WithOperation(op).WithCampaign(campaignID)
	}
	if existing.CampaignID != campaignID || !existing.Amount.Equal(amount) {
		return nil, apperrors.NewAppError(apperrors.KindInconsistency,
			fmt.Sprintf("transaction already recorded for campaign %s with amount %s", existing.CampaignID, existing.Amount), nil).
			WithOperation(op).
			WithCampaign(campaignID).
			WithTransaction(existing.TransactionHash)
	}
	return existing, nil
}

// unrecorded reports whether err left a ledger-confirmed donation out of the mirror.
func unrecorded(err error) bool {
	switch apperrors.KindOf(err) {
	case "", apperrors.KindContention, apperrors.KindInconsistency:
		return false
	}
	return true
}

// runDetached runs fn on a context that outlives the caller. A caller that gives up first gets
// LEDGER_INDETERMINATE while fn carries on, and fn's outcome is logged when it lands.
func runDetached[T any](ctx context.Context, s *campaignService, op, campaignID string, fn func(ctx context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome)
	abandoned := make(chan struct{})
	detached := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	metrics.DetachedOperations.Inc()
	go func() {
		defer s.inflight.Done()
		defer metrics.DetachedOperations.Dec()
		v, err := fn(detached)
		select {
		case done <- outcome{value: v, err: err}:
		case <-abandoned:
			if err != nil {
				s.LogError(detached, err, "Abandoned operation failed",
					slog.String("operation", op), slog.String("campaign_id", campaignID))
				return
			}
			s.LogInfo(detached, "Abandoned operation completed",
				slog.String("operation", op), slog.String("campaign_id", campaignID))
		}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		close(abandoned)
		var zero T
		return zero, apperrors.NewAppError(apperrors.KindLedgerIndeterminate,
			"caller stopped waiting; the outcome will be recorded in the background", ctx.Err()).
			WithOperation(op).
			WithCampaign(campaignID)
	}
}
