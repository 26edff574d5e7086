package accrual

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/dao"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/metrics"
	"server-staking-app/internal/pkg/util"
)

const (
	defaultBatchSize       = 500
	defaultPositionTimeout = 5 * time.Second
	defaultGuardTTL        = time.Hour
)

type Options struct {
	Location        *time.Location
	BatchSize       int
	PositionTimeout time.Duration
	GuardTTL        time.Duration
}

// RunReport counts what one run did with each active position it visited.
// Busy is set when another run held the period and nothing was visited.
type RunReport struct {
	Period   string `json:"period"`
	Busy     bool   `json:"busy"`
	Credited int    `json:"credited"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// Scheduler credits each active position's daily return at most once per
// period. The period is the run's calendar date in the configured zone and
// is recorded on the position in the same transaction as the credit.
type Scheduler struct {
	db      *gorm.DB
	wallets *wallet.Store
	guard   Guard
	opts    Options
}

func NewScheduler(gdb *gorm.DB, wallets *wallet.Store, guard Guard, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.PositionTimeout <= 0 {
		opts.PositionTimeout = defaultPositionTimeout
	}
	if opts.GuardTTL <= 0 {
		opts.GuardTTL = defaultGuardTTL
	}
	if guard == nil {
		guard = NewLocalGuard()
	}
	return &Scheduler{db: gdb, wallets: wallets, guard: guard, opts: opts}
}

func (s *Scheduler) guardKey(period string) string {
	return fmt.Sprintf("staking:accrual:%s", period)
}

// Start is the cron entry point.
func (s *Scheduler) Start() {
	report, err := s.Run(context.Background(), time.Now())
	if err != nil {
		log.Errorf("err: %+v", errors.WithMessage(err, "accrual run"))
		return
	}
	log.Infof("accrual run done: %+v", report)
}

// Run credits every active position that has not been accrued for now's
// period. Running it again for the same period credits nothing.
func (s *Scheduler) Run(ctx context.Context, now time.Time) (RunReport, error) {
	report := RunReport{Period: util.PeriodOf(now, s.opts.Location)}

	release, ok, err := s.guard.Acquire(ctx, s.guardKey(report.Period), s.opts.GuardTTL)
	switch {
	case err != nil:
		// the watermark still keeps the run idempotent
		log.Warnf("accrual guard for %s unavailable, running unguarded: %v", report.Period, err)
	case !ok:
		log.Infof("accrual for %s already running elsewhere", report.Period)
		report.Busy = true
		return report, nil
	default:
		defer release()
	}

	begin := time.Now()
	defer func() { metrics.AccrualRunSeconds.Observe(time.Since(begin).Seconds()) }()

	var lastID uint64
	for {
		if err = ctx.Err(); err != nil {
			return report, errors.Wrap(err, "accrual run")
		}
		positions, err := dao.Staking.ListActive(s.db.WithContext(ctx), lastID, s.opts.BatchSize)
		if err != nil {
			return report, err
		}
		for i := range positions {
			s.visit(ctx, &positions[i], &report)
		}
		if len(positions) < s.opts.BatchSize {
			break
		}
		lastID = positions[len(positions)-1].ID
	}
	return report, nil
}

func (s *Scheduler) visit(ctx context.Context, pos *model.StakingPosition, report *RunReport) {
	credited, err := s.accrue(ctx, pos, report.Period)
	switch {
	case err != nil:
		report.Failed++
		metrics.AccrualPositions.WithLabelValues(metrics.ResultFailed).Inc()
		log.WithFields(log.Fields{
			"position": pos.ID,
			"user":     pos.UserID,
			"period":   report.Period,
		}).Errorf("accrue failed: %+v", err)
	case credited:
		report.Credited++
		metrics.AccrualPositions.WithLabelValues(metrics.ResultCredit).Inc()
	default:
		report.Skipped++
		metrics.AccrualPositions.WithLabelValues(metrics.ResultSkipped).Inc()
	}
}

// accrue reports false without error when the position is not due for
// period: it started in this period, was already accrued, or earns nothing.
func (s *Scheduler) accrue(ctx context.Context, pos *model.StakingPosition, period string) (bool, error) {
	if util.PeriodOf(pos.StartDate, s.opts.Location) >= period || !pos.ReturnPerDay.IsPositive() {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.PositionTimeout)
	defer cancel()

	var credited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		marked, err := dao.Staking.MarkAccrued(tx, pos.ID, period)
		if err != nil || !marked {
			return err
		}
		if _, err = s.wallets.ApplyDeltaTx(tx, pos.UserID, pos.CurrencyID, pos.ReturnPerDay, ""); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return false, errors.WithMessagef(err, "position %d period %s", pos.ID, period)
	}
	return credited, nil
}
