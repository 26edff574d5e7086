package dao

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"server-staking-app/internal/model"
)

type staking struct {
}

var Staking = new(staking)

func (*staking) Create(tx *gorm.DB, p *model.StakingPosition) error {
	return errors.Wrap(tx.Create(p).Error, "insert staking position")
}

func (*staking) ListByUser(tx *gorm.DB, userID uint64) (positions []model.StakingPosition, err error) {
	err = tx.Where("user_id = ?", userID).Order("id desc").Find(&positions).Error
	return positions, errors.Wrap(err, "select staking positions")
}

// ListActive pages through active positions by id, starting after lastID.
func (*staking) ListActive(tx *gorm.DB, lastID uint64, pageSize int) (positions []model.StakingPosition, err error) {
	err = tx.Where("status = ? AND id > ?", model.PositionActive, lastID).
		Order("id asc").Limit(pageSize).Find(&positions).Error
	return positions, errors.Wrap(err, "select active positions")
}

// MarkAccrued advances the position's watermark to period. It reports false
// when the position was already accrued for period or later.
func (*staking) MarkAccrued(tx *gorm.DB, id uint64, period string) (bool, error) {
	res := tx.Model(&model.StakingPosition{}).
		Where("id = ? AND status = ? AND last_accrued_on < ?", id, model.PositionActive, period).
		Update("last_accrued_on", period)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "update accrual watermark")
	}
	return res.RowsAffected == 1, nil
}

// CloseMatured flips every active position whose end date has passed.
func (*staking) CloseMatured(tx *gorm.DB, now time.Time) (int64, error) {
	res := tx.Model(&model.StakingPosition{}).
		Where("status = ? AND end_date <= ?", model.PositionActive, now).
		Update("status", model.PositionClosed)
	return res.RowsAffected, errors.Wrap(res.Error, "close matured positions")
}
