package dao

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"server-staking-app/internal/db"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
)

type wallet struct {
}

var Wallet = new(wallet)

func (*wallet) Create(tx *gorm.DB, w *model.Wallet) error {
	err := tx.Create(w).Error
	if db.IsDuplicate(err) {
		return errors.Wrapf(generr.ErrConflict, "wallet of user %d already exists", w.UserID)
	}
	return errors.Wrap(err, "insert wallet")
}

// Get reads the wallet row. With forUpdate the row is locked until the
// surrounding transaction ends, where the dialect supports it.
func (*wallet) Get(tx *gorm.DB, userID uint64, forUpdate bool) (w model.Wallet, err error) {
	q := tx.Where("user_id = ?", userID)
	if forUpdate && db.SupportsRowLock(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err = q.Take(&w).Error
	if db.IsNotFound(err) {
		return w, generr.NewNotFound(generr.EntityWallet, userID)
	}
	return w, errors.Wrap(err, "select wallet")
}

// CompareAndSwap writes balance only if the row still carries version.
// It reports false when another writer got there first.
func (*wallet) CompareAndSwap(tx *gorm.DB, userID uint64, version int64, balance string) (bool, error) {
	res := tx.Model(&model.Wallet{}).
		Where("user_id = ? AND version = ?", userID, version).
		Updates(map[string]interface{}{
			"balance":    balance,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "update wallet")
	}
	return res.RowsAffected == 1, nil
}
