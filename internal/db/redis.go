package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"server-staking-app/config"
)

// OpenRedis returns nil without error when no address is configured.
func OpenRedis(ctx context.Context, cfg config.RedisConf) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	log.Infof("conn redis %s success", cfg.Addr)
	return rdb, nil
}
