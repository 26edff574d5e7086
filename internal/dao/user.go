package dao

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"server-staking-app/internal/db"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
)

type user struct {
}

var User = new(user)

func (*user) Create(tx *gorm.DB, u *model.User) error {
	return errors.Wrap(tx.Create(u).Error, "insert user")
}

func (*user) Get(tx *gorm.DB, id uint64) (u model.User, err error) {
	err = tx.Where("id = ?", id).Take(&u).Error
	if db.IsNotFound(err) {
		return u, generr.NewNotFound(generr.EntityUser, id)
	}
	return u, errors.Wrap(err, "select user")
}
