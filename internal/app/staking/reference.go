package staking

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"server-staking-app/config"
	"server-staking-app/internal/dao"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
)

// SeedReference upserts the configured plans and level bonuses. Rows that
// are absent from configuration are left as they are.
func SeedReference(ctx context.Context, gdb *gorm.DB, plans []config.PlanConf, levels []config.LevelBonusConf) error {
	planRows := make([]model.Plan, 0, len(plans))
	for _, p := range plans {
		if p.PlanID == 0 || p.Duration <= 0 || p.Percentage < 0 {
			return errors.Wrapf(generr.ErrInvalidInput, "plan %+v", p)
		}
		planRows = append(planRows, model.Plan{
			PlanID:     p.PlanID,
			Duration:   p.Duration,
			Percentage: decimal.NewFromFloat(p.Percentage),
		})
	}
	levelRows := make([]model.LevelBonus, 0, len(levels))
	for _, l := range levels {
		if l.Level <= 0 || l.Percentage < 0 {
			return errors.Wrapf(generr.ErrInvalidInput, "level bonus %+v", l)
		}
		levelRows = append(levelRows, model.LevelBonus{
			Level:      l.Level,
			Percentage: decimal.NewFromFloat(l.Percentage),
		})
	}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := dao.Plan.Upsert(tx, planRows); err != nil {
			return err
		}
		return dao.LevelBonus.Upsert(tx, levelRows)
	})
	if err != nil {
		return err
	}
	log.Infof("reference data seeded: %d plans, %d level bonuses", len(planRows), len(levelRows))
	return nil
}
