package pgsql_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	portsrepo "github.com/SscSPs/fundraising_app/internal/core/ports/repositories"
	"github.com/SscSPs/fundraising_app/internal/core/services"
	"github.com/SscSPs/fundraising_app/internal/dto"
	"github.com/SscSPs/fundraising_app/internal/ledger"
	"github.com/SscSPs/fundraising_app/internal/ledger/simulated"
	"github.com/SscSPs/fundraising_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/fundraising_app/internal/utils"
	"github.com/SscSPs/fundraising_app/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// These tests need a disposable PostgreSQL database in PGSQL_TEST_URL.
type PgxMirrorRepositoryTestSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *pgsql.PgxMirrorRepository
}

func (suite *PgxMirrorRepositoryTestSuite) SetupSuite() {
	url := os.Getenv("PGSQL_TEST_URL")
	if url == "" {
		suite.T().Skip("PGSQL_TEST_URL not set")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.Require().NoError(database.MigratePostgres(url, logger))

	pool, err := database.NewPgxPool(context.Background(), url, true)
	suite.Require().NoError(err)
	suite.pool = pool
	suite.repo = pgsql.NewMirrorRepository(pool)
}

func (suite *PgxMirrorRepositoryTestSuite) TearDownSuite() {
	database.ClosePgxPool(suite.pool)
}

func (suite *PgxMirrorRepositoryTestSuite) newCampaign(target int64) domain.Campaign {
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.NewString()
	return domain.Campaign{
		CampaignID:      id,
		ContractAddress: utils.AddressFromHash(utils.Keccak256([]byte(id))),
		Title:           "Library roof",
		TargetAmount:    decimal.NewFromInt(target),
		CurrentAmount:   decimal.Zero,
		CreatorAddress:  "0x00000000000000000000000000000000000000c1",
		StartDate:       now.Unix(),
		EndDate:         now.Add(time.Hour).Unix(),
		Status:          domain.StatusActive,
		AuditFields:     domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

func (suite *PgxMirrorRepositoryTestSuite) TestDonationAndCompareAndSet() {
	ctx := context.Background()
	c := suite.newCampaign(1000)
	suite.Require().NoError(suite.repo.InsertCampaign(ctx, c))

	txHash := "0x" + uuid.NewString()
	donation := domain.Donation{
		DonationID:      uuid.NewString(),
		CampaignID:      c.CampaignID,
		DonorAddress:    "0x00000000000000000000000000000000000000d1",
		Amount:          decimal.NewFromInt(1000),
		TransactionHash: txHash,
		LedgerTimestamp: time.Now().Unix(),
		CreatedAt:       time.Now().UTC(),
	}

	err := suite.repo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.MirrorTx) error {
		if err := tx.InsertDonation(ctx, donation); err != nil {
			return err
		}
		// A duplicate must not abort the transaction.
		dup := donation
		dup.DonationID = uuid.NewString()
		suite.ErrorIs(tx.InsertDonation(ctx, dup), apperrors.ErrDuplicate)

		next := domain.CampaignState{CurrentAmount: decimal.NewFromInt(1000), Status: domain.StatusFunded}
		_, err := tx.UpdateCampaignAmountAndStatus(ctx, c.CampaignID, c.State(), next, domain.StateChange{TransactionHash: txHash, At: time.Now()})
		return err
	})
	suite.Require().NoError(err)

	found, err := suite.repo.FindCampaignByID(ctx, c.CampaignID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusFunded, found.Status)
	suite.True(found.CurrentAmount.Equal(decimal.NewFromInt(1000)))

	_, err = suite.repo.UpdateCampaignAmountAndStatus(ctx, c.CampaignID, c.State(), found.State(), domain.StateChange{At: time.Now()})
	suite.ErrorIs(err, apperrors.ErrConflict)
}

// Concurrent donations contend on the campaign row, so the losers go through the compare-and-set retry.
func (suite *PgxMirrorRepositoryTestSuite) TestConcurrentDonationsRollForward() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chain := simulated.New()
	campaigns := services.NewCampaignService(pgsql.NewRepositoryProvider(suite.pool),
		ledger.NewGateway(chain, ledger.WithLogger(logger)),
		services.WithCampaignLogger(logger))
	defer campaigns.Wait()

	campaign, err := campaigns.CreateCampaign(ctx, dto.CreateCampaignRequest{
		Title:        "Library roof",
		TargetAmount: decimal.NewFromInt(1000),
		EndDate:      time.Now().Add(time.Hour).Unix(),
	}, "0x00000000000000000000000000000000000000c1")
	suite.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := campaigns.Donate(ctx, campaign.CampaignID, dto.DonateRequest{Amount: decimal.NewFromInt(300)},
				"0x00000000000000000000000000000000000000d1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.Require().NoError(err)
	}

	found, err := suite.repo.FindCampaignByID(ctx, campaign.CampaignID)
	suite.Require().NoError(err)
	suite.True(found.CurrentAmount.Equal(decimal.NewFromInt(1200)), found.CurrentAmount.String())
	suite.Equal(domain.StatusFunded, found.Status)
	donations, err := suite.repo.FindDonationsByCampaign(ctx, campaign.CampaignID)
	suite.Require().NoError(err)
	suite.Len(donations, 4)
}

func (suite *PgxMirrorRepositoryTestSuite) TestFlagsRoundTrip() {
	ctx := context.Background()
	flag := domain.ReconciliationFlag{
		FlagID:    uuid.NewString(),
		Kind:      domain.FlagLedgerIndeterminate,
		Operation: "Donate",
		Details:   "timeout",
		CreatedAt: time.Now().UTC(),
	}
	suite.Require().NoError(suite.repo.SaveFlag(ctx, flag))
	suite.Require().NoError(suite.repo.ResolveFlag(ctx, flag.FlagID, "replayed", time.Now()))
	suite.ErrorIs(suite.repo.ResolveFlag(ctx, flag.FlagID, "replayed", time.Now()), apperrors.ErrNotFound)
}

func TestPgxMirrorRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PgxMirrorRepositoryTestSuite))
}
