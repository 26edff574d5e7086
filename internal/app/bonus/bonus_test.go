package bonus

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-staking-app/internal/app/referral"
	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/db/dbtest"
	"server-staking-app/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	wallets *wallet.Store
	a, b, c uint64
	d       uint64
}

// A <- B <- C <- D
func setup(t *testing.T, formula Formula) (*Distributor, fixture) {
	gdb := dbtest.New(t)
	wallets := wallet.NewStore(gdb, wallet.Options{})
	var f fixture
	f.wallets = wallets
	f.a = dbtest.SeedUser(t, gdb)
	f.b = dbtest.SeedUser(t, gdb, f.a)
	f.c = dbtest.SeedUser(t, gdb, f.b, f.a)
	f.d = dbtest.SeedUser(t, gdb, f.c, f.b, f.a)
	dbtest.SeedLevelBonus(t, gdb, 1, "5")
	dbtest.SeedLevelBonus(t, gdb, 3, "1")
	return NewDistributor(gdb, referral.NewResolver(gdb, wallets), wallets, formula, ""), f
}

func slotOne(t *testing.T, wallets *wallet.Store, userID uint64) decimal.Decimal {
	b, err := wallets.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b[model.DefaultCurrencyID].Amount
}

func TestDistributeWalksChainInOrder(t *testing.T) {
	d, f := setup(t, Proportional)

	report, err := d.Distribute(context.Background(), f.d, dec("200"))
	require.NoError(t, err)
	require.Len(t, report.Levels, 3)

	assert.Equal(t, 1, report.Levels[0].Level)
	assert.Equal(t, f.c, report.Levels[0].AncestorID)
	assert.True(t, report.Levels[0].Credited)

	// level 2 has no configured percentage and is skipped
	assert.Equal(t, 2, report.Levels[1].Level)
	assert.Equal(t, f.b, report.Levels[1].AncestorID)
	assert.False(t, report.Levels[1].Credited)

	assert.Equal(t, 3, report.Levels[2].Level)
	assert.Equal(t, f.a, report.Levels[2].AncestorID)
	assert.True(t, report.Levels[2].Credited)
	assert.Equal(t, 2, report.Credited())

	assert.True(t, slotOne(t, f.wallets, f.c).Equal(dec("10")))
	assert.True(t, slotOne(t, f.wallets, f.b).IsZero())
	assert.True(t, slotOne(t, f.wallets, f.a).Equal(dec("2")))
	assert.True(t, slotOne(t, f.wallets, f.d).IsZero())
}

func TestDistributeLiteralFormula(t *testing.T) {
	d, f := setup(t, nil)

	report, err := d.Distribute(context.Background(), f.d, dec("4"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Credited())

	// (5 / 4) / 100 and (1 / 4) / 100
	assert.True(t, slotOne(t, f.wallets, f.c).Equal(dec("0.0125")))
	assert.True(t, slotOne(t, f.wallets, f.a).Equal(dec("0.0025")))
}

func TestDistributeSkipsMissingSlotAndWallet(t *testing.T) {
	d, f := setup(t, Proportional)

	// C lost slot "1"; A's wallet row is gone
	dbtest.SetBalance(t, d.db, f.c, `{"v":1,"currencies":{"2":{"amt":"1","sym":"ETH"}}}`)
	require.NoError(t, d.db.Where("user_id = ?", f.a).Delete(&model.Wallet{}).Error)

	report, err := d.Distribute(context.Background(), f.d, dec("100"))
	require.NoError(t, err)
	require.Len(t, report.Levels, 3)
	assert.Zero(t, report.Credited())
	assert.Equal(t, "no currency slot 1", report.Levels[0].Reason)
	assert.Equal(t, "ancestor has no wallet", report.Levels[2].Reason)

	b, err := f.wallets.GetBalance(context.Background(), f.c)
	require.NoError(t, err)
	_, ok := b[model.DefaultCurrencyID]
	assert.False(t, ok)
}

func TestDistributeNoReferral(t *testing.T) {
	d, f := setup(t, Proportional)

	report, err := d.Distribute(context.Background(), f.a, dec("100"))
	require.NoError(t, err)
	assert.Empty(t, report.Levels)

	_, err = d.Distribute(context.Background(), 999, dec("100"))
	assert.Error(t, err)
}

func TestFormulas(t *testing.T) {
	assert.True(t, Literal(dec("5"), dec("3")).Equal(dec("0.016666666666666667")))
	assert.True(t, Literal(dec("5"), decimal.Zero).IsZero())
	assert.True(t, Proportional(dec("5"), dec("3")).Equal(dec("0.15")))

	f, err := FormulaByName("")
	require.NoError(t, err)
	assert.True(t, f(dec("10"), dec("2")).Equal(dec("0.05")))
	_, err = FormulaByName("bogus")
	assert.Error(t, err)
}
