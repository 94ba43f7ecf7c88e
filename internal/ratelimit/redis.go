package ratelimit

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/everyskill/everyskill-backend/internal/logger"
)

type redisLimiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter builds a fixed-window limiter over Redis INCR+EXPIRE
// so the limit holds across replicas. Requires REDIS_ADDR.
func NewRedisLimiter(log *logger.Logger, limit int, window time.Duration) (Limiter, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisLimiter{
		log:    log.With("service", "RedisLimiter"),
		rdb:    rdb,
		limit:  limit,
		window: window,
	}, nil
}

func (l *redisLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	redisKey := "ratelimit:" + key
	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: a limiter outage should not take the API down.
		l.log.Warn("Redis INCR failed, allowing request", "error", err)
		return true
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.log.Warn("Redis EXPIRE failed", "error", err)
		}
	}
	return count <= int64(l.limit)
}
