package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/ledger/relay"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func donation() domain.RecordDonation {
	return domain.RecordDonation{
		IdempotencyKey:  "key-1",
		ContractAddress: "0x00000000000000000000000000000000000000aa",
		CampaignRef:     "c-1",
		DonorAddress:    "0x00000000000000000000000000000000000000d1",
		Amount:          decimal.NewFromInt(400),
	}
}

func TestSubmit_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/operations", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, domain.OpRecordDonation, body["operation"])
		assert.Equal(t, "400", body["amount"])

		writeJSON(w, http.StatusOK, map[string]any{"transactionHash": "0xabc", "amount": "400", "blockTimestamp": 1700000000})
	}))
	defer srv.Close()

	client := relay.NewClient(relay.Config{BaseURL: srv.URL, APIKey: "secret"})
	receipt, err := client.Submit(context.Background(), donation())
	require.NoError(t, err)
	assert.Equal(t, "0xabc", receipt.TransactionHash)
	assert.True(t, receipt.Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, int64(1700000000), receipt.BlockTimestamp)
}

func TestSubmit_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status int
		want   apperrors.Kind
	}{
		{status: http.StatusBadRequest, want: apperrors.KindLedgerRejected},
		{status: http.StatusConflict, want: apperrors.KindLedgerRejected},
		{status: http.StatusUnprocessableEntity, want: apperrors.KindLedgerRejected},
		{status: http.StatusUnauthorized, want: apperrors.KindLedgerFatal},
		{status: http.StatusForbidden, want: apperrors.KindLedgerFatal},
		{status: http.StatusNotFound, want: apperrors.KindLedgerFatal},
		{status: http.StatusRequestTimeout, want: apperrors.KindLedgerIndeterminate},
		{status: http.StatusTooManyRequests, want: apperrors.KindLedgerIndeterminate},
		{status: http.StatusInternalServerError, want: apperrors.KindLedgerIndeterminate},
		{status: http.StatusBadGateway, want: apperrors.KindLedgerIndeterminate},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]string{"error": "nope", "code": "X"})
			}))
			defer srv.Close()

			_, err := relay.NewClient(relay.Config{BaseURL: srv.URL}).Submit(context.Background(), donation())
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
		})
	}
}

func TestSubmit_TimeoutIsIndeterminateAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]any{"transactionHash": "0xlate"})
	}))
	defer srv.Close()

	client := relay.NewClient(relay.Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Submit(context.Background(), donation())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLedgerIndeterminate)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contracts/0xaa/campaigns/c-1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"contractAddress": "0xaa",
			"raisedAmount":    "1100",
			"targetAmount":    "1000",
			"withdrawn":       false,
		})
	}))
	defer srv.Close()

	state, err := relay.NewClient(relay.Config{BaseURL: srv.URL}).QueryCampaign(context.Background(), "0xaa", "c-1")
	require.NoError(t, err)
	assert.True(t, state.RaisedAmount.Equal(decimal.NewFromInt(1100)))
	assert.False(t, state.Withdrawn)
}
