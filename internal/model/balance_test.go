package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-staking-app/internal/pkg/generr"
)

func TestDecodeBalanceLegacy(t *testing.T) {
	b, err := DecodeBalance(`{"1": {"amt":0,"sym":" " }, "2": {"amt": 5.5, "sym": "ETH"}}`)
	require.NoError(t, err)
	require.Len(t, b, 2)
	assert.True(t, b["1"].Amount.IsZero())
	assert.Equal(t, " ", b["1"].Symbol)
	assert.True(t, decimal.RequireFromString("5.5").Equal(b["2"].Amount))
	assert.Equal(t, "ETH", b["2"].Symbol)
}

func TestEncodeDecodeCurrentSchema(t *testing.T) {
	b := NewBalance()
	_, err := b.Apply("2", decimal.RequireFromString("0.000986301369863014"), "ETH")
	require.NoError(t, err)

	raw, err := EncodeBalance(b)
	require.NoError(t, err)
	assert.Contains(t, raw, `"v":1`)

	got, err := DecodeBalance(raw)
	require.NoError(t, err)
	assert.True(t, got["2"].Amount.Equal(b["2"].Amount))
	assert.Equal(t, "", got["1"].Symbol)
}

func TestDecodeBalanceRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		``,
		`null`,
		`[1,2]`,
		`{"1": "lots"}`,
		`{"1": {"sym": "ETH"}}`,
		`{"1": {"amt": "abc", "sym": "ETH"}}`,
		`{"1": {"amt": -1, "sym": "ETH"}}`,
		`{"": {"amt": 1, "sym": "ETH"}}`,
		`{"v": 7, "currencies": {}}`,
		`{"v": 1}`,
		`{"v": "one", "currencies": {}}`,
	} {
		_, err := DecodeBalance(raw)
		assert.True(t, generr.Is(err, generr.ErrDataCorruption), "input %q: %v", raw, err)
	}
}

func TestBalanceApply(t *testing.T) {
	b := NewBalance()

	entry, err := b.Apply("2", decimal.NewFromInt(5), "ETH")
	require.NoError(t, err)
	assert.Equal(t, "ETH", entry.Symbol)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(5)))

	// symbol of an existing entry is kept
	entry, err = b.Apply("2", decimal.NewFromInt(-3), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "ETH", entry.Symbol)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(2)))

	_, err = b.Apply("2", decimal.NewFromInt(-3), "")
	assert.True(t, generr.Is(err, generr.ErrInsufficientFunds))
	assert.True(t, b["2"].Amount.Equal(decimal.NewFromInt(2)))

	_, err = b.Apply("9", decimal.NewFromInt(-1), "DOGE")
	assert.True(t, generr.Is(err, generr.ErrInsufficientFunds))
	_, ok := b["9"]
	assert.False(t, ok)
}
