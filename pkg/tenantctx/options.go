package tenantctx

import (
	"io"
	"log/slog"
	"time"
)

// DefaultTTL is the default lifetime of a stored context entry.
const DefaultTTL = 5 * time.Minute

// Option configures a Cache.
type Option func(*Cache)

// WithStore sets a custom store implementation. The default is an
// in-memory store with TTL expiry and LRU eviction.
func WithStore(store Store) Option {
	return func(c *Cache) {
		if store != nil {
			c.store = store
		}
	}
}

// WithTTL sets the lifetime of stored context entries.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
