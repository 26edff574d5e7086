// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"server-staking-app/config"
	"server-staking-app/internal/db"
	"server-staking-app/internal/model"
)

// New returns a migrated sqlite database private to t. A single connection
// serialises statements the way row locks would on mysql.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(config.DatabaseConf{
		Driver:       db.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// NewPooled returns a migrated file-backed sqlite database served by conns
// connections, so transactions from different goroutines really overlap.
// Writers queue on the database lock for up to the busy timeout.
func NewPooled(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DatabaseConf{
		Driver: db.DriverSQLite,
		DSN: fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate",
			filepath.Join(t.TempDir(), "staking.db")),
		MaxIdleConns: conns,
		MaxOpenConns: conns,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func SeedPlan(t testing.TB, gdb *gorm.DB, planID uint64, months int, percentage string) model.Plan {
	t.Helper()
	p := model.Plan{PlanID: planID, Duration: months, Percentage: decimal.RequireFromString(percentage)}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func SeedLevelBonus(t testing.TB, gdb *gorm.DB, level int, percentage string) {
	t.Helper()
	require.NoError(t, gdb.Create(&model.LevelBonus{Level: level, Percentage: decimal.RequireFromString(percentage)}).Error)
}

// SeedUser inserts a user with the given ancestor chain and a fresh wallet.
func SeedUser(t testing.TB, gdb *gorm.DB, chain ...uint64) uint64 {
	t.Helper()
	u := model.User{ReferralStatus: model.ReferralChain(chain)}
	if len(chain) > 0 {
		u.CurrentReferral = chain[0]
	}
	require.NoError(t, gdb.Create(&u).Error)

	raw, err := model.EncodeBalance(model.NewBalance())
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&model.Wallet{UserID: u.ID, Balance: raw}).Error)
	return u.ID
}

// SetBalance overwrites a wallet document, for arranging test state only.
func SetBalance(t testing.TB, gdb *gorm.DB, userID uint64, raw string) {
	t.Helper()
	require.NoError(t, gdb.Model(&model.Wallet{}).Where("user_id = ?", userID).Update("balance", raw).Error)
}
