package accrual

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Guard keeps two accrual runs for the same period from overlapping. It only
// saves work: the per-position watermark is what prevents double credits.
type Guard interface {
	// Acquire reports ok=false when key is already held. release must be
	// called once the run is over.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// NewGuard picks the redis guard when a client is configured and the
// in-process guard otherwise.
func NewGuard(rdb *redis.Client) Guard {
	if rdb == nil {
		return NewLocalGuard()
	}
	return &RedisGuard{rdb: rdb}
}

type LocalGuard struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]time.Time)}
}

func (g *LocalGuard) Acquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if expires, ok := g.held[key]; ok && (ttl <= 0 || now.Before(expires)) {
		return nil, false, nil
	}
	expires := now.Add(ttl)
	g.held[key] = expires
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if held, ok := g.held[key]; ok && held.Equal(expires) {
			delete(g.held, key)
		}
	}, true, nil
}

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisGuard shares the guard between instances with SET NX and a TTL, so a
// crashed holder frees the period once the TTL lapses.
type RedisGuard struct {
	rdb *redis.Client
}

func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrapf(err, "setnx %s", key)
	}
	if !ok {
		return nil, false, nil
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.rdb, []string{key}, token).Err(); err != nil {
			log.Warnf("release guard %s: %v", key, err)
		}
	}, true, nil
}
