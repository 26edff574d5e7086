package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var confPath string

func init() {
	flag.StringVar(&confPath, "conf", "configs/", "default config path")
}

var (
	Server   ServerConf
	Database DatabaseConf
	Redis    RedisConf
	Staking  StakingConf
)

// ServerConf 配置
type ServerConf struct {
	Env            string        `yaml:"env"`
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DatabaseConf.Driver selects the gorm dialect: mysql, postgres or sqlite.
type DatabaseConf struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	Charset         string        `yaml:"charset"`
	DSN             string        `yaml:"dsn"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConf is optional; an empty Addr keeps the accrual run guard in-process.
type RedisConf struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type WalletConf struct {
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

type BonusConf struct {
	Formula      string `yaml:"formula"`
	CurrencySlot string `yaml:"currency_slot"`
}

// PlanConf and LevelBonusConf rows are upserted into the reference tables
// at startup.
type PlanConf struct {
	PlanID     uint64  `yaml:"plan_id"`
	Duration   int     `yaml:"duration"`
	Percentage float64 `yaml:"percentage"`
}

type LevelBonusConf struct {
	Level      int     `yaml:"level"`
	Percentage float64 `yaml:"percentage"`
}

// StakingConf 质押相关配置
type StakingConf struct {
	AccrualSchedule  string           `yaml:"accrual_schedule"`
	MaturitySchedule string           `yaml:"maturity_schedule"`
	CloseMatured     bool             `yaml:"close_matured"`
	Timezone         string           `yaml:"timezone"`
	PositionTimeout  time.Duration    `yaml:"position_timeout"`
	BatchSize        int              `yaml:"batch_size"`
	RunGuardTTL      time.Duration    `yaml:"run_guard_ttl"`
	Wallet           WalletConf       `yaml:"wallet"`
	Bonus            BonusConf        `yaml:"bonus"`
	Plans            []PlanConf       `yaml:"plans"`
	LevelBonus       []LevelBonusConf `yaml:"level_bonus"`
}

func Init() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system environment variables")
	}

	unmarshal("server", &Server, true, map[string]interface{}{
		"env":             "dev",
		"host":            "0.0.0.0",
		"port":            "8081",
		"log_level":       "info",
		"request_timeout": "10s",
	})
	unmarshal("mysql", &Database, true, map[string]interface{}{
		"driver":         "mysql",
		"host":           "127.0.0.1",
		"port":           "3306",
		"user":           "root",
		"password":       "",
		"database":       "staking",
		"charset":        "utf8mb4",
		"max_idle_conns": 10,
		"max_open_conns": 50,
	})
	unmarshal("redis", &Redis, false, nil)
	unmarshal("staking", &Staking, true, map[string]interface{}{
		"accrual_schedule":     "0 0 0 * * *",
		"maturity_schedule":    "0 30 0 * * *",
		"timezone":             "UTC",
		"position_timeout":     "5s",
		"batch_size":           500,
		"run_guard_ttl":        "1h",
		"wallet.max_retries":   10,
		"wallet.retry_backoff": "5ms",
		"bonus.formula":        "literal",
		"bonus.currency_slot":  "1",
	})
}

// unmarshal reads <name>.yaml from the config path into out. Environment
// variables prefixed with the upper-cased name override file values.
func unmarshal(name string, out interface{}, required bool, defaults map[string]interface{}) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName(name)
	v.AddConfigPath(confPath)
	v.SetEnvPrefix(name)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig() // Find and read the config file
	if err != nil {         // Handle errors reading the config file
		if required {
			panic(fmt.Errorf("Fatal error config file: %s \n", err))
		}
		log.Infof("optional config %s not loaded: %v", name, err)
	}

	err = v.Unmarshal(out, func(config *mapstructure.DecoderConfig) {
		config.TagName = "yaml"
	})
	if err != nil {
		panic(fmt.Errorf("Fatal error unmarshal config file: %s \n", err))
	}
}
