package db

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"server-staking-app/config"
	"server-staking-app/internal/model"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects with the configured dialect and migrates the ledger tables.
// The caller owns the handle and must Close it on shutdown.
func Open(cfg config.DatabaseConf) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", cfg.Driver)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err = Migrate(gdb); err != nil {
		return nil, err
	}
	log.Infof("conn %s %s@%s/%s success", cfg.Driver, cfg.User, cfg.Host, cfg.Database)
	return gdb, nil
}

func dialectorFor(cfg config.DatabaseConf) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverMySQL, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC", cfg.User, cfg.Password,
				cfg.Host, cfg.Port, cfg.Database, cfg.Charset)
		}
		return mysql.Open(dsn), nil
	case DriverPostgres:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.Host, cfg.User, cfg.Password, cfg.Database, cfg.Port)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite:
		if cfg.DSN == "" {
			return nil, errors.New("sqlite driver needs a dsn")
		}
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, errors.Errorf("unknown database driver %q", cfg.Driver)
}

func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&model.User{},
		&model.Wallet{},
		&model.StakingPosition{},
		&model.Plan{},
		&model.LevelBonus{},
	)
	return errors.Wrap(err, "auto migrate")
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SupportsRowLock reports whether SELECT ... FOR UPDATE is meaningful for
// the handle's dialect.
func SupportsRowLock(gdb *gorm.DB) bool {
	return gdb.Dialector.Name() != DriverSQLite
}
