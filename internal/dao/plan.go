package dao

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"server-staking-app/internal/db"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
)

type plan struct {
}

var Plan = new(plan)

func (*plan) Get(tx *gorm.DB, planID uint64) (p model.Plan, err error) {
	err = tx.Where("plan_id = ?", planID).Take(&p).Error
	if db.IsNotFound(err) {
		return p, generr.NewNotFound(generr.EntityPlan, planID)
	}
	return p, errors.Wrap(err, "select plan")
}

// Upsert keeps the reference table in line with configuration.
func (*plan) Upsert(tx *gorm.DB, plans []model.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"duration", "percentage"}),
	}).Create(&plans).Error
	return errors.Wrap(err, "upsert plans")
}

type levelBonus struct {
}

var LevelBonus = new(levelBonus)

// Get reports ok=false when no percentage is configured for level.
func (*levelBonus) Get(tx *gorm.DB, level int) (lb model.LevelBonus, ok bool, err error) {
	err = tx.Where("level = ?", level).Take(&lb).Error
	if db.IsNotFound(err) {
		return lb, false, nil
	}
	if err != nil {
		return lb, false, errors.Wrap(err, "select level bonus")
	}
	return lb, true, nil
}

func (*levelBonus) Upsert(tx *gorm.DB, rows []model.LevelBonus) error {
	if len(rows) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "level"}},
		DoUpdates: clause.AssignmentColumns([]string{"percentage"}),
	}).Create(&rows).Error
	return errors.Wrap(err, "upsert level bonus")
}
