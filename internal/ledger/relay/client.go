// Package relay talks to a signing relay node that submits operations to the ledger on the
// service's behalf.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Client is a ledger.Client over the relay's HTTP API. Requests are never retried: a
// resubmission could apply an effect twice.
type Client struct {
	http *resty.Client
}

// Config configures a relay client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a relay client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: c}
}

type operationRequest struct {
	Operation       string `json:"operation"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	TargetAmount    string `json:"targetAmount,omitempty"`
	EndDate         int64  `json:"endDate,omitempty"`
	CreatorAddress  string `json:"creatorAddress,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	CampaignRef     string `json:"campaignRef,omitempty"`
	DonorAddress    string `json:"donorAddress,omitempty"`
	Amount          string `json:"amount,omitempty"`
}

type receiptResponse struct {
	TransactionHash string `json:"transactionHash"`
	ContractAddress string `json:"contractAddress"`
	Amount          string `json:"amount"`
	BlockTimestamp  int64  `json:"blockTimestamp"`
}

type campaignStateResponse struct {
	ContractAddress string `json:"contractAddress"`
	RaisedAmount    string `json:"raisedAmount"`
	TargetAmount    string `json:"targetAmount"`
	Withdrawn       bool   `json:"withdrawn"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func toRequest(op domain.LedgerOperation) (operationRequest, error) {
	req := operationRequest{Operation: op.OperationName()}
	switch o := op.(type) {
	case domain.DeployCampaign:
		req.Title = o.Title
		req.Description = o.Description
		req.TargetAmount = o.TargetAmount.String()
		req.EndDate = o.EndDate
		req.CreatorAddress = o.CreatorAddress
	case domain.RecordDonation:
		req.ContractAddress = o.ContractAddress
		req.CampaignRef = o.CampaignRef
		req.DonorAddress = o.DonorAddress
		req.Amount = o.Amount.String()
	case domain.Withdraw:
		req.ContractAddress = o.ContractAddress
		req.CampaignRef = o.CampaignRef
	default:
		return req, fmt.Errorf("unsupported ledger operation %T", op)
	}
	return req, nil
}

// Submit posts op to the relay with its idempotency key.
func (c *Client) Submit(ctx context.Context, op domain.LedgerOperation) (*domain.Receipt, error) {
	body, err := toRequest(op)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.KindLedgerRejected, "operation not submitted", err).WithOperation(op.OperationName())
	}

	var out receiptResponse
	var failure errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", op.Key()).
		SetBody(body).
		SetResult(&out).
		SetError(&failure).
		Post("/v1/operations")
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "relay request failed", err).WithOperation(op.OperationName())
	}
	if kind, failed := classifyStatus(resp.StatusCode()); failed {
		return nil, apperrors.NewAppError(kind, describe(resp, failure), nil).WithOperation(op.OperationName())
	}

	receipt := &domain.Receipt{
		TransactionHash: out.TransactionHash,
		ContractAddress: out.ContractAddress,
		BlockTimestamp:  out.BlockTimestamp,
	}
	if out.Amount != "" {
		amount, err := decimal.NewFromString(out.Amount)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "relay returned a malformed amount", err).
				WithOperation(op.OperationName()).
				WithTransaction(out.TransactionHash)
		}
		receipt.Amount = amount
	}
	return receipt, nil
}

// QueryCampaign reads the ledger's view of a campaign through the relay.
func (c *Client) QueryCampaign(ctx context.Context, contractAddress string, campaignRef string) (*domain.LedgerCampaignState, error) {
	var out campaignStateResponse
	var failure errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&failure).
		Get("/v1/contracts/" + url.PathEscape(contractAddress) + "/campaigns/" + url.PathEscape(campaignRef))
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "relay request failed", err)
	}
	if kind, failed := classifyStatus(resp.StatusCode()); failed {
		return nil, apperrors.NewAppError(kind, describe(resp, failure), nil).WithContract(contractAddress)
	}

	raised, err := decimal.NewFromString(out.RaisedAmount)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "relay returned a malformed raised amount", err)
	}
	target, err := decimal.NewFromString(out.TargetAmount)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "relay returned a malformed target amount", err)
	}
	return &domain.LedgerCampaignState{
		ContractAddress: out.ContractAddress,
		RaisedAmount:    raised,
		TargetAmount:    target,
		Withdrawn:       out.Withdrawn,
	}, nil
}

// classifyStatus maps an HTTP status to a ledger kind. 5xx, 408 and 429 leave the effect
// unknown; authentication and routing failures are configuration problems.
func classifyStatus(status int) (apperrors.Kind, bool) {
	switch {
	case status >= 200 && status < 300:
		return "", false
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return apperrors.KindLedgerIndeterminate, true
	case status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusNotFound:
		return apperrors.KindLedgerFatal, true
	case status >= 400:
		return apperrors.KindLedgerRejected, true
	default:
		return apperrors.KindLedgerIndeterminate, true
	}
}

func describe(resp *resty.Response, failure errorResponse) string {
	msg := failure.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	if failure.Code != "" {
		msg = failure.Code + ": " + msg
	}
	return fmt.Sprintf("relay answered %d: %s", resp.StatusCode(), msg)
}
