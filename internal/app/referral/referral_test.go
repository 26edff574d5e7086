package referral

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/db/dbtest"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
)

func TestRegisterBuildsChain(t *testing.T) {
	gdb := dbtest.New(t)
	wallets := wallet.NewStore(gdb, wallet.Options{})
	r := NewResolver(gdb, wallets)
	ctx := context.Background()

	a, err := r.Register(ctx, 0)
	require.NoError(t, err)
	b, err := r.Register(ctx, a.ID)
	require.NoError(t, err)
	c, err := r.Register(ctx, b.ID)
	require.NoError(t, err)
	d, err := r.Register(ctx, c.ID)
	require.NoError(t, err)

	chain, err := r.ChainFor(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, chain)

	chain, err = r.ChainFor(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{c.ID, b.ID, a.ID}, chain)

	built, err := r.BuildChain(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReferralChain{d.ID, c.ID, b.ID, a.ID}, built)

	// every registered user owns exactly the placeholder wallet
	for _, id := range []uint64{a.ID, b.ID, c.ID, d.ID} {
		bal, err := wallets.GetBalance(ctx, id)
		require.NoError(t, err)
		require.Len(t, bal, 1)
		assert.True(t, bal[model.DefaultCurrencyID].Amount.IsZero())
		assert.Empty(t, bal[model.DefaultCurrencyID].Symbol)
	}
}

func TestRegisterUnknownReferrer(t *testing.T) {
	gdb := dbtest.New(t)
	r := NewResolver(gdb, wallet.NewStore(gdb, wallet.Options{}))
	ctx := context.Background()

	_, err := r.Register(ctx, 77)
	assert.True(t, generr.Is(err, generr.ErrNotFound))

	var users int64
	require.NoError(t, gdb.Model(&model.User{}).Count(&users).Error)
	assert.Zero(t, users)

	_, err = r.ChainFor(ctx, 77)
	assert.True(t, generr.Is(err, generr.ErrNotFound))
}
