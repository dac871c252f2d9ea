// Package ledger normalizes every ledger client into the outcome taxonomy the reconciliation
// engine relies on, and instruments each call.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/core/ports/gateways"
	"github.com/SscSPs/fundraising_app/internal/platform/metrics"
	"github.com/SscSPs/fundraising_app/internal/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client is a raw ledger transport. It may return any error; Gateway classifies it.
type Client interface {
	Submit(ctx context.Context, op domain.LedgerOperation) (*domain.Receipt, error)
	QueryCampaign(ctx context.Context, contractAddress string, campaignRef string) (*domain.LedgerCampaignState, error)
}

// Gateway wraps a Client.
//
//   - errors that are not ledger-kind AppErrors become LEDGER_INDETERMINATE
//   - a success without a transaction hash becomes LEDGER_INDETERMINATE
//   - a deploy success without a contract address becomes LEDGER_INDETERMINATE
type Gateway struct {
	client Client
	logger *slog.Logger
	now    func() time.Time
}

var _ gateways.LedgerGateway = (*Gateway)(nil)

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used for call outcomes.
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithClock overrides the time source used to fill missing block timestamps.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway creates a Gateway over client.
func NewGateway(client Client, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client: client,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit sends op to the ledger and classifies the outcome.
func (g *Gateway) Submit(ctx context.Context, op domain.LedgerOperation) (*domain.Receipt, error) {
	name := op.OperationName()
	ctx, span := tracing.StartLedgerSpan(ctx, name, op.Key())
	defer span.End()

	start := time.Now()
	receipt, err := g.client.Submit(ctx, op)
	if err == nil {
		receipt, err = g.checkReceipt(op, receipt)
	} else {
		err = classify(name, err)
	}
	elapsed := time.Since(start)

	outcome := outcomeOf(err)
	metrics.LedgerCallDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	metrics.LedgerCallTotal.WithLabelValues(name, outcome).Inc()
	span.SetAttributes(attribute.String("ledger.outcome", outcome))

	logger := g.logger.With(
		slog.String("ledger_operation", name),
		slog.String("idempotency_key", op.Key()),
		slog.Duration("elapsed", elapsed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logger.WarnContext(ctx, "Ledger call failed", slog.String("outcome", outcome), slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.String("ledger.transaction_hash", receipt.TransactionHash))
	logger.InfoContext(ctx, "Ledger call confirmed", slog.String("transaction_hash", receipt.TransactionHash))
	return receipt, nil
}

// QueryCampaign reads the ledger's view of a campaign.
func (g *Gateway) QueryCampaign(ctx context.Context, contractAddress string, campaignRef string) (*domain.LedgerCampaignState, error) {
	const name = "QUERY_CAMPAIGN"
	ctx, span := tracing.StartLedgerSpan(ctx, name, campaignRef)
	defer span.End()

	start := time.Now()
	state, err := g.client.QueryCampaign(ctx, contractAddress, campaignRef)
	if err == nil && state == nil {
		err = errors.New("ledger returned an empty campaign state")
	}
	if err != nil {
		err = classify(name, err)
	}
	outcome := outcomeOf(err)
	metrics.LedgerCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.LedgerCallTotal.WithLabelValues(name, outcome).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	return state, nil
}

func (g *Gateway) checkReceipt(op domain.LedgerOperation, receipt *domain.Receipt) (*domain.Receipt, error) {
	name := op.OperationName()
	if receipt == nil || receipt.TransactionHash == "" {
		return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "ledger reported success without a transaction hash", nil).
			WithOperation(name)
	}

	out := *receipt
	switch o := op.(type) {
	case domain.DeployCampaign:
		if out.ContractAddress == "" {
			return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "deploy confirmed without a contract address", nil).
				WithOperation(name).
				WithTransaction(out.TransactionHash)
		}
	case domain.RecordDonation:
		if out.Amount.IsZero() {
			out.Amount = o.Amount
		}
		if !domain.IsWholePositive(out.Amount) {
			return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "donation confirmed with an invalid amount "+out.Amount.String(), nil).
				WithOperation(name).
				WithTransaction(out.TransactionHash)
		}
	}
	if out.BlockTimestamp == 0 {
		out.BlockTimestamp = g.now().Unix()
	}
	return &out, nil
}

// classify maps err onto the ledger taxonomy. Only typed ledger errors keep their kind.
func classify(operation string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && apperrors.IsLedgerKind(appErr.Kind) {
		if appErr.Operation == "" {
			appErr.Operation = operation
		}
		return appErr
	}
	msg := "ledger outcome unknown"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		msg = "ledger call did not complete before the deadline"
	}
	return apperrors.NewAppError(apperrors.KindLedgerIndeterminate, msg, err).WithOperation(operation)
}

func outcomeOf(err error) string {
	switch apperrors.KindOf(err) {
	case "":
		return "ok"
	case apperrors.KindLedgerRejected:
		return "rejected"
	case apperrors.KindLedgerFatal:
		return "fatal"
	default:
		return "indeterminate"
	}
}
