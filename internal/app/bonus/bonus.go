package bonus

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"server-staking-app/internal/app/wallet"
	"server-staking-app/internal/dao"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
	"server-staking-app/internal/pkg/metrics"
)

// ChainResolver yields a user's ancestors, nearest first.
type ChainResolver interface {
	ChainFor(ctx context.Context, userID uint64) ([]uint64, error)
}

// Crediter is the wallet write path the distributor needs.
type Crediter interface {
	GetBalance(ctx context.Context, userID uint64) (model.Balance, error)
	ApplyDelta(ctx context.Context, userID uint64, currencyID string, delta decimal.Decimal, symbolIfNew string) (model.BalanceEntry, error)
}

var _ Crediter = (*wallet.Store)(nil)

type LevelOutcome struct {
	Level      int             `json:"level"`
	AncestorID uint64          `json:"ancestor_id"`
	Amount     decimal.Decimal `json:"amount"`
	Credited   bool            `json:"credited"`
	Reason     string          `json:"reason,omitempty"`
}

type Report struct {
	StakerID uint64         `json:"staker_id"`
	Levels   []LevelOutcome `json:"levels"`
}

func (r Report) Credited() int {
	n := 0
	for _, l := range r.Levels {
		if l.Credited {
			n++
		}
	}
	return n
}

type Distributor struct {
	db       *gorm.DB
	chains   ChainResolver
	wallets  Crediter
	formula  Formula
	currency string
}

func NewDistributor(gdb *gorm.DB, chains ChainResolver, wallets Crediter, formula Formula, currencySlot string) *Distributor {
	if formula == nil {
		formula = Literal
	}
	if currencySlot == "" {
		currencySlot = model.DefaultCurrencyID
	}
	return &Distributor{db: gdb, chains: chains, wallets: wallets, formula: formula, currency: currencySlot}
}

// Distribute credits every ancestor of stakerID with its level bonus. Levels
// are independent: a missing percentage, wallet or currency slot skips that
// level only. The returned error covers the chain lookup alone.
func (d *Distributor) Distribute(ctx context.Context, stakerID uint64, stakedAmount decimal.Decimal) (Report, error) {
	report := Report{StakerID: stakerID}
	chain, err := d.chains.ChainFor(ctx, stakerID)
	if err != nil {
		return report, errors.WithMessage(err, "referral chain")
	}

	for i, ancestorID := range chain {
		outcome := d.creditLevel(ctx, i+1, ancestorID, stakedAmount)
		report.Levels = append(report.Levels, outcome)

		entry := log.WithFields(log.Fields{
			"staker":   stakerID,
			"level":    outcome.Level,
			"ancestor": ancestorID,
			"bonus":    outcome.Amount.String(),
		})
		if outcome.Credited {
			metrics.BonusLevels.WithLabelValues(metrics.ResultCredit).Inc()
			entry.Info("level bonus credited")
		} else {
			metrics.BonusLevels.WithLabelValues(metrics.ResultSkipped).Inc()
			entry.Warnf("level bonus skipped: %s", outcome.Reason)
		}
	}
	return report, nil
}

func (d *Distributor) creditLevel(ctx context.Context, level int, ancestorID uint64, stakedAmount decimal.Decimal) LevelOutcome {
	out := LevelOutcome{Level: level, AncestorID: ancestorID}

	lb, ok, err := dao.LevelBonus.Get(d.db.WithContext(ctx), level)
	if err != nil {
		out.Reason = err.Error()
		return out
	}
	if !ok {
		out.Reason = "no level bonus configured"
		return out
	}

	out.Amount = d.formula(lb.Percentage, stakedAmount)
	if !out.Amount.IsPositive() {
		out.Reason = "bonus rounds to zero"
		return out
	}

	// the bonus never creates the slot
	balance, err := d.wallets.GetBalance(ctx, ancestorID)
	if err != nil {
		out.Reason = reason(err)
		return out
	}
	if _, ok := balance[d.currency]; !ok {
		out.Reason = "no currency slot " + d.currency
		return out
	}

	if _, err = d.wallets.ApplyDelta(ctx, ancestorID, d.currency, out.Amount, ""); err != nil {
		out.Reason = reason(err)
		return out
	}
	out.Credited = true
	return out
}

func reason(err error) string {
	switch generr.Kind(err) {
	case generr.ErrNotFound:
		return "ancestor has no wallet"
	case generr.ErrDataCorruption:
		return "ancestor wallet corrupted: " + err.Error()
	}
	return err.Error()
}
