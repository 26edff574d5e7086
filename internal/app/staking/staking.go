package staking

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"server-staking-app/internal/app/bonus"
	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/dao"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
	"server-staking-app/internal/pkg/metrics"
	"server-staking-app/internal/pkg/util"
)

const (
	daysPerYear  = 365
	bonusTimeout = 30 * time.Second
)

var hundred = decimal.NewFromInt(100)

// BonusDistributor is notified once a position is committed.
type BonusDistributor interface {
	Distribute(ctx context.Context, stakerID uint64, stakedAmount decimal.Decimal) (bonus.Report, error)
}

// stage of the stake pipeline: debited -> position_created -> bonus_distributed
type stage string

const (
	stageDebited          stage = "debited"
	stagePositionCreated  stage = "position_created"
	stageBonusDistributed stage = "bonus_distributed"
)

type Engine struct {
	db      *gorm.DB
	wallets *wallet.Store
	bonus   BonusDistributor
	now     func() time.Time
}

func NewEngine(gdb *gorm.DB, wallets *wallet.Store, distributor BonusDistributor) *Engine {
	return &Engine{db: gdb, wallets: wallets, bonus: distributor, now: time.Now}
}

// DailyReturn is (amount * annual_percentage / 100) / 365.
func DailyReturn(amount, annualPercentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(annualPercentage).Div(hundred).DivRound(decimal.NewFromInt(daysPerYear), 18)
}

// OpenPosition debits amount from the user's currency balance and records an
// active staking position. The debit is the only balance check, so two
// concurrent stakes can never both spend the same funds. Referral bonuses
// are paid afterwards on a best-effort basis.
func (e *Engine) OpenPosition(ctx context.Context, userID uint64, currencyID string, planID uint64,
	amount decimal.Decimal) (model.StakingPosition, error) {
	var pos model.StakingPosition
	if userID == 0 || currencyID == "" {
		return pos, errors.Wrap(generr.ErrInvalidInput, "user_id and cur_id are required")
	}
	if !amount.IsPositive() {
		return pos, errors.Wrapf(generr.ErrInvalidInput, "amount %s", amount)
	}

	plan, err := dao.Plan.Get(e.db.WithContext(ctx), planID)
	if err != nil {
		metrics.Stakes.WithLabelValues(metrics.ResultFailed).Inc()
		return pos, err
	}

	if _, err = e.wallets.ApplyDelta(ctx, userID, currencyID, amount.Neg(), ""); err != nil {
		metrics.Stakes.WithLabelValues(metrics.ResultFailed).Inc()
		return pos, errors.WithMessage(err, "debit stake")
	}
	e.logStage(userID, stageDebited)

	start := e.now().UTC()
	pos = model.StakingPosition{
		UserID:       userID,
		CurrencyID:   currencyID,
		PlanID:       plan.PlanID,
		StakeAmount:  amount,
		ReturnPerDay: DailyReturn(amount, plan.Percentage),
		StartDate:    start,
		EndDate:      util.AddMonths(start, plan.Duration),
		Status:       model.PositionActive,
	}
	if err = dao.Staking.Create(e.db.WithContext(ctx), &pos); err != nil {
		metrics.Stakes.WithLabelValues(metrics.ResultFailed).Inc()
		e.refund(ctx, userID, currencyID, amount)
		return pos, errors.Wrap(generr.ErrInternal, err.Error())
	}
	e.logStage(userID, stagePositionCreated)
	metrics.Stakes.WithLabelValues(metrics.ResultOK).Inc()

	// the stake is committed; the bonus must not be cut short by the caller
	// going away
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bonusTimeout)
	defer cancel()
	if _, err = e.bonus.Distribute(bctx, userID, amount); err != nil {
		log.Errorf("err: %+v", errors.WithMessagef(err, "distribute bonus for position %d", pos.ID))
	} else {
		e.logStage(userID, stageBonusDistributed)
	}
	return pos, nil
}

// refund puts back a debit whose position could not be recorded.
func (e *Engine) refund(ctx context.Context, userID uint64, currencyID string, amount decimal.Decimal) {
	_, err := e.wallets.ApplyDelta(context.WithoutCancel(ctx), userID, currencyID, amount, "")
	if err != nil {
		log.WithFields(log.Fields{
			"user":     userID,
			"currency": currencyID,
			"amount":   amount.String(),
		}).Errorf("refund of failed stake lost, needs reconciliation: %+v", err)
	}
}

func (e *Engine) logStage(userID uint64, s stage) {
	log.WithFields(log.Fields{"user": userID, "stage": s}).Debug("stake pipeline")
}

func (e *Engine) ListPositions(ctx context.Context, userID uint64) ([]model.StakingPosition, error) {
	return dao.Staking.ListByUser(e.db.WithContext(ctx), userID)
}

// CloseMatured flips positions past their end date to closed. It only runs
// when enabled in configuration.
func (e *Engine) CloseMatured(ctx context.Context, now time.Time) (int64, error) {
	n, err := dao.Staking.CloseMatured(e.db.WithContext(ctx), now.UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Infof("closed %d matured staking positions", n)
	}
	return n, nil
}
