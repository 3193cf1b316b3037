package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

const (
	redisScanBatch     = 200
	redisGenerationKey = "gen"
)

// RedisStore is a Backend shared across replicas. Redis errors degrade to a
// direct load rather than failing the read.
//
// Entries live under a generation counter that DeletePrefix bumps, so a load
// that started before an invalidation writes to a key no reader will look up.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
	logger    *logging.Logger
	flight    singleflight.Group
}

func NewRedisStore(client redis.UniversalClient, namespace string, ttl time.Duration, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *RedisStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *RedisStore) versionedKey(gen int64, key string) string {
	return s.key("g" + strconv.FormatInt(gen, 10) + ":" + key)
}

// generation returns the current key generation. A missing counter is 0.
func (s *RedisStore) generation(ctx context.Context) (int64, error) {
	gen, err := s.client.Get(ctx, s.key(redisGenerationKey)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (s *RedisStore) GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	gen, err := s.generation(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "redis cache generation read failed", "error", err)
		return loader(ctx)
	}

	fullKey := s.versionedKey(gen, key)
	cached, err := s.client.Get(ctx, fullKey).Bytes()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		s.logger.WarnContext(ctx, "redis cache read failed", "key", fullKey, "error", err)
	}

	value, err, _ := s.flight.Do(fullKey, func() (any, error) {
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := s.client.Set(ctx, fullKey, loaded, s.ttl).Err(); setErr != nil {
			s.logger.WarnContext(ctx, "redis cache write failed", "key", fullKey, "error", setErr)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	out, _ := value.([]byte)
	return out, nil
}

// DeletePrefix invalidates every entry in the namespace by bumping the
// generation, then removes the superseded keys matching prefix.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}
	if err := s.client.Incr(ctx, s.key(redisGenerationKey)).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}

	pattern := s.key("g*:"+prefix) + "*"
	if err := s.sweep(ctx, pattern); err != nil {
		s.logger.WarnContext(ctx, "redis cache sweep failed", "pattern", pattern, "error", err)
	}
	return nil
}

func (s *RedisStore) sweep(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, redisScanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan cache keys %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cache keys %q: %w", pattern, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
