package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestAppError_MatchesKindSentinelAndCause(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := apperrors.NewAppError(apperrors.KindLedgerIndeterminate, "donation outcome unknown", cause).
		WithOperation("Donate").
		WithCampaign("c-1")

	assert.ErrorIs(t, err, apperrors.ErrLedgerIndeterminate)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, apperrors.ErrLedgerRejected)
	assert.Equal(t, apperrors.KindLedgerIndeterminate, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "campaign=c-1")
	assert.Contains(t, err.Error(), "[Donate]")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "wrapped not found", err: fmt.Errorf("find campaign: %w", apperrors.ErrNotFound), want: apperrors.KindNotFound},
		{name: "conflict sentinel", err: apperrors.ErrConflict, want: apperrors.KindMirrorConflict},
		{name: "wrapped app error", err: fmt.Errorf("outer: %w", apperrors.Validation("bad %s", "amount")), want: apperrors.KindValidation},
		{name: "unknown", err: errors.New("boom"), want: apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(tt.err))
		})
	}
}

func TestIsLedgerKind(t *testing.T) {
	assert.True(t, apperrors.IsLedgerKind(apperrors.KindLedgerRejected))
	assert.True(t, apperrors.IsLedgerKind(apperrors.KindLedgerFatal))
	assert.False(t, apperrors.IsLedgerKind(apperrors.KindContention))
}
