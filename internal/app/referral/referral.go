package referral

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/dao"
	"server-staking-app/internal/model"
)

// Resolver reads the ancestor chains captured at registration. Chains are
// never rewritten, so a later change upstream does not reach existing
// descendants.
type Resolver struct {
	db      *gorm.DB
	wallets *wallet.Store
}

func NewResolver(gdb *gorm.DB, wallets *wallet.Store) *Resolver {
	return &Resolver{db: gdb, wallets: wallets}
}

// ChainFor returns the user's ancestors, nearest referrer first. It is empty
// for users registered without a referral.
func (r *Resolver) ChainFor(ctx context.Context, userID uint64) ([]uint64, error) {
	u, err := dao.User.Get(r.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	return []uint64(u.ReferralStatus), nil
}

// BuildChain is the chain a new user registered under referrerID inherits:
// the referrer followed by the referrer's own ancestors.
func (r *Resolver) BuildChain(ctx context.Context, referrerID uint64) (model.ReferralChain, error) {
	return buildChain(r.db.WithContext(ctx), referrerID)
}

func buildChain(tx *gorm.DB, referrerID uint64) (model.ReferralChain, error) {
	if referrerID == 0 {
		return model.ReferralChain{}, nil
	}
	referrer, err := dao.User.Get(tx, referrerID)
	if err != nil {
		return nil, errors.WithMessage(err, "referrer")
	}
	return referrer.ReferralStatus.Prepend(referrerID), nil
}

// Register creates the user row and its wallet in one transaction; a zero
// referrerID registers without referral.
func (r *Resolver) Register(ctx context.Context, referrerID uint64) (model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chain, err := buildChain(tx, referrerID)
		if err != nil {
			return err
		}
		u = model.User{ReferralStatus: chain, CurrentReferral: referrerID}
		if err = dao.User.Create(tx, &u); err != nil {
			return err
		}
		return r.wallets.CreateWalletTx(tx, u.ID)
	})
	if err != nil {
		return u, errors.WithMessage(err, "register user")
	}
	log.Infof("user %d registered, referral chain %v", u.ID, []uint64(u.ReferralStatus))
	return u, nil
}
