package domain_test

import (
	"testing"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	// 2^256 - 1, the largest uint256 a contract can hold.
	const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

	got, err := domain.ParseAmount(maxUint256)
	require.NoError(t, err)
	assert.Equal(t, maxUint256, got.String())

	_, err = domain.ParseAmount("12.5")
	assert.Error(t, err)

	_, err = domain.ParseAmount("")
	assert.Error(t, err)

	_, err = domain.ParseAmount("ten")
	assert.Error(t, err)
}

func TestIsWholePositive(t *testing.T) {
	assert.True(t, domain.IsWholePositive(decimal.NewFromInt(1)))
	assert.False(t, domain.IsWholePositive(decimal.Zero))
	assert.False(t, domain.IsWholePositive(decimal.NewFromInt(-5)))
	assert.False(t, domain.IsWholePositive(decimal.RequireFromString("0.1")))
	assert.True(t, domain.IsWholeNonNegative(decimal.Zero))
}

func TestSumAmounts(t *testing.T) {
	donations := []domain.Donation{
		{Amount: decimal.NewFromInt(600)},
		{Amount: decimal.NewFromInt(500)},
	}
	assert.True(t, domain.SumAmounts(donations).Equal(decimal.NewFromInt(1100)))
	assert.True(t, domain.SumAmounts(nil).IsZero())
}
