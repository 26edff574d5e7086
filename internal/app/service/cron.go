package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"

	"server-staking-app/config"
	"server-staking-app/internal/app/accrual"
	"server-staking-app/internal/app/staking"
)

// StakingTicker schedules the daily accrual and, when enabled, the maturity
// job in the configured zone. The caller stops the returned cron.
func StakingTicker(loc *time.Location, scheduler *accrual.Scheduler, engine *staking.Engine) (*cron.Cron, error) {
	cfg := config.Staking
	c := cron.NewWithLocation(loc)
	if err := c.AddFunc(cfg.AccrualSchedule, scheduler.Start); err != nil {
		return nil, errors.Wrapf(err, "accrual schedule %q", cfg.AccrualSchedule)
	}
	if cfg.CloseMatured {
		err := c.AddFunc(cfg.MaturitySchedule, func() {
			if _, err := engine.CloseMatured(context.Background(), time.Now()); err != nil {
				log.Errorf("err: %+v", errors.WithMessage(err, "close matured"))
			}
		})
		if err != nil {
			return nil, errors.Wrapf(err, "maturity schedule %q", cfg.MaturitySchedule)
		}
	}
	c.Start()
	return c, nil
}
