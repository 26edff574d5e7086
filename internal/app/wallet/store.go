package wallet

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"server-staking-app/internal/dao"
	"server-staking-app/internal/db"
	"server-staking-app/internal/model"
	"server-staking-app/internal/pkg/generr"
	"server-staking-app/internal/pkg/metrics"
)

const (
	defaultMaxRetries   = 10
	defaultRetryBackoff = 5 * time.Millisecond
)

type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// Store owns every read-modify-write of the wallets table. Each write is a
// compare-and-swap on the row version, so concurrent writers to the same
// wallet never lose an update and no in-process lock is needed.
type Store struct {
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
}

func NewStore(gdb *gorm.DB, opts Options) *Store {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	return &Store{db: gdb, maxRetries: opts.MaxRetries, backoff: opts.RetryBackoff}
}

// CreateWallet inserts the registration-time mapping {"1": {0, ""}}. A
// second call for the same user fails with ErrConflict.
func (s *Store) CreateWallet(ctx context.Context, userID uint64) error {
	return s.CreateWalletTx(s.db.WithContext(ctx), userID)
}

func (s *Store) CreateWalletTx(tx *gorm.DB, userID uint64) error {
	raw, err := model.EncodeBalance(model.NewBalance())
	if err != nil {
		return err
	}
	return dao.Wallet.Create(tx, &model.Wallet{UserID: userID, Balance: raw})
}

func (s *Store) GetBalance(ctx context.Context, userID uint64) (model.Balance, error) {
	w, err := dao.Wallet.Get(s.db.WithContext(ctx), userID, false)
	if err != nil {
		return nil, err
	}
	b, err := model.DecodeBalance(w.Balance)
	return b, errors.WithMessagef(err, "wallet of user %d", userID)
}

// ApplyDelta adds delta to the user's currency entry and persists the
// mapping. A negative delta larger than the current amount fails with
// ErrInsufficientFunds and leaves the wallet untouched. Lost version races
// are retried; ErrConflict is returned once retries are exhausted.
func (s *Store) ApplyDelta(ctx context.Context, userID uint64, currencyID string, delta decimal.Decimal,
	symbolIfNew string) (model.BalanceEntry, error) {
	if err := validateDelta(currencyID, delta); err != nil {
		return model.BalanceEntry{}, err
	}

	for attempt := 0; ; attempt++ {
		var (
			entry   model.BalanceEntry
			swapped bool
		)
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
			entry, swapped, err = applyOnce(tx, userID, currencyID, delta, symbolIfNew)
			return err
		})
		if err == nil && swapped {
			return entry, nil
		}
		if err != nil && !db.IsRetryable(err) {
			return entry, errors.WithMessagef(err, "apply delta %s to user %d currency %s", delta, userID, currencyID)
		}

		if attempt >= s.maxRetries {
			metrics.WalletConflicts.Inc()
			return entry, errors.Wrapf(generr.ErrConflict, "user %d currency %s after %d attempts",
				userID, currencyID, attempt+1)
		}
		metrics.WalletRetries.Inc()
		log.Debugf("wallet %d version race, retry %d", userID, attempt+1)

		select {
		case <-ctx.Done():
			return entry, errors.Wrap(ctx.Err(), "apply delta")
		case <-time.After(s.backoff * time.Duration(attempt+1)):
		}
	}
}

// ApplyDeltaTx applies delta inside the caller's transaction with a single
// attempt, so the credit commits or rolls back together with the caller's
// other writes.
func (s *Store) ApplyDeltaTx(tx *gorm.DB, userID uint64, currencyID string, delta decimal.Decimal,
	symbolIfNew string) (model.BalanceEntry, error) {
	if err := validateDelta(currencyID, delta); err != nil {
		return model.BalanceEntry{}, err
	}
	entry, swapped, err := applyOnce(tx, userID, currencyID, delta, symbolIfNew)
	if err != nil {
		return entry, errors.WithMessagef(err, "apply delta %s to user %d currency %s", delta, userID, currencyID)
	}
	if !swapped {
		metrics.WalletConflicts.Inc()
		return entry, errors.Wrapf(generr.ErrConflict, "user %d currency %s", userID, currencyID)
	}
	return entry, nil
}

func applyOnce(tx *gorm.DB, userID uint64, currencyID string, delta decimal.Decimal,
	symbolIfNew string) (model.BalanceEntry, bool, error) {
	w, err := dao.Wallet.Get(tx, userID, true)
	if err != nil {
		return model.BalanceEntry{}, false, err
	}
	balance, err := model.DecodeBalance(w.Balance)
	if err != nil {
		return model.BalanceEntry{}, false, err
	}
	entry, err := balance.Apply(currencyID, delta, symbolIfNew)
	if err != nil {
		return entry, false, err
	}
	raw, err := model.EncodeBalance(balance)
	if err != nil {
		return entry, false, err
	}
	swapped, err := dao.Wallet.CompareAndSwap(tx, userID, w.Version, raw)
	return entry, swapped, err
}

func validateDelta(currencyID string, delta decimal.Decimal) error {
	if currencyID == "" {
		return errors.Wrap(generr.ErrInvalidInput, "empty currency id")
	}
	if delta.IsZero() {
		return errors.Wrap(generr.ErrInvalidInput, "zero delta")
	}
	return nil
}
