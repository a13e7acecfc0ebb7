package tenantctx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis connection used by the redis-backed
// store. Populate it from the environment via the config package.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

var (
	// ErrInvalidRedisURL is returned when the Redis connection URL cannot
	// be parsed.
	ErrInvalidRedisURL = errors.New("tenantctx: invalid redis connection url")

	// ErrRedisNotReady is returned when the Redis server cannot be
	// reached within the configured retries.
	ErrRedisNotReady = errors.New("tenantctx: redis is not ready")
)

// ConnectRedis establishes a Redis connection with retry, for use with
// NewRedisStore. Callers own the returned client and should close it via
// the store's Close.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := 0; i < attempts; i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// defaultRedisKeyPrefix namespaces context entries so the store can share
// a Redis database with other keyspaces.
const defaultRedisKeyPrefix = "tenantctx:"

// RedisStore persists resolved contexts in Redis as JSON values with
// per-entry TTL. Suitable when several control-plane replicas should
// share resolved contexts; note that invalidation hooks still fire only
// on the instance that called Invalidate.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisKeyPrefix overrides the key prefix.
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisLogger sets a logger for store-level failures. Redis errors
// degrade to cache misses rather than failing the calling operation, so
// the log is the only place they surface.
func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(s *RedisStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRedisStore wraps an established Redis client as a Store.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	if client == nil {
		panic("tenantctx: redis client cannot be nil")
	}

	s := &RedisStore{
		client: client,
		prefix: defaultRedisKeyPrefix,
		logger: discardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RedisStore) key(tenantID string) string {
	return s.prefix + tenantID
}

// Get retrieves a stored context. Any Redis failure is treated as a
// cache miss so the caller falls through to a fresh resolution.
func (s *RedisStore) Get(ctx context.Context, tenantID string) (Context, bool) {
	raw, err := s.client.Get(ctx, s.key(tenantID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("tenantctx: redis get failed",
				slog.String("tenant_id", tenantID), slog.Any("error", err))
		}
		return Context{}, false
	}

	var tc Context
	if err := json.Unmarshal(raw, &tc); err != nil {
		s.logger.Warn("tenantctx: corrupt redis entry dropped",
			slog.String("tenant_id", tenantID), slog.Any("error", err))
		s.Delete(ctx, tenantID)
		return Context{}, false
	}

	return tc, true
}

func (s *RedisStore) Set(ctx context.Context, tenantID string, tc Context, ttl time.Duration) {
	raw, err := json.Marshal(tc)
	if err != nil {
		s.logger.Warn("tenantctx: redis set marshal failed",
			slog.String("tenant_id", tenantID), slog.Any("error", err))
		return
	}

	if err := s.client.Set(ctx, s.key(tenantID), raw, ttl).Err(); err != nil {
		s.logger.Warn("tenantctx: redis set failed",
			slog.String("tenant_id", tenantID), slog.Any("error", err))
	}
}

func (s *RedisStore) Delete(ctx context.Context, tenantID string) {
	if err := s.client.Del(ctx, s.key(tenantID)).Err(); err != nil {
		s.logger.Warn("tenantctx: redis delete failed",
			slog.String("tenant_id", tenantID), slog.Any("error", err))
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
