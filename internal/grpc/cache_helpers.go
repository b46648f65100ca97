package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
	maxJitter           = 30 * time.Second
)

// addTTLJitter spreads expirations by up to ±15s so keys written together
// do not expire together. TTLs shorter than the jitter window are kept as is.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= maxJitter {
		return ttl
	}
	jitter := time.Duration(rand.Int63n(int64(maxJitter))) - maxJitter/2
	return ttl + jitter
}

func storeAsync[T any](c Cacher, key string, ttl time.Duration, logger *zap.Logger, value T) {
	go func() {
		setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
		defer cancel()

		ttl := addTTLJitter(ttl)
		if err := c.Set(setCtx, key, value, ttl); err != nil {
			logger.Warn("failed to populate cache", zap.String("key", key), zap.Error(err))
			return
		}
		logger.Debug("cache populated", zap.String("key", key), zap.Duration("ttl", ttl))
	}()
}

// refreshAhead recomputes a hit in the background. Concurrent hits on the
// same key share one refresh.
func refreshAhead[T any](c Cacher, sf *singleflight.Group, key string, ttl time.Duration, logger *zap.Logger, fn FetchFunc[T]) {
	go func() {
		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			storeAsync(c, key, ttl, logger, value)
			return value, nil
		})
	}()
}

// FindAndCache implements read-through caching with singleflight and refresh-ahead logic.
// Cache errors other than a miss are logged and treated as a miss; fetch
// errors are never cached.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		refreshAhead(c, sf, key, ttl, logger, fn)
		return cached, nil
	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))
	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		storeAsync(c, key, ttl, logger, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
