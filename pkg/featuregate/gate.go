package featuregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Resolver answers whether a tenant has access to a feature. It is the
// boundary to the backing entitlement service; implementations should
// return ErrUnavailable (possibly wrapped) on transport failures.
type Resolver interface {
	Resolve(ctx context.Context, tenantID, feature string) (bool, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, tenantID, feature string) (bool, error)

func (f ResolverFunc) Resolve(ctx context.Context, tenantID, feature string) (bool, error) {
	return f(ctx, tenantID, feature)
}

// pairKey identifies a cached entitlement. Using a struct key rules out
// collisions between tenant ids and feature names entirely.
type pairKey struct {
	tenantID string
	feature  string
}

type entry struct {
	hasAccess bool
	checkedAt time.Time
}

// Gate resolves tenant-scoped feature access with per-pair result caching
// and single-flight de-duplication of concurrent lookups.
//
// Denial is a first-class outcome: Check returns (false, nil) for a
// denied feature, never an error.
type Gate struct {
	resolver Resolver
	logger   *slog.Logger
	ttl      time.Duration // zero means entries never expire on their own

	sfg singleflight.Group

	mu      sync.RWMutex
	entries map[pairKey]entry
	// inflight counts callers currently inside Check for a pair, so Peek
	// can report loading for the leader and every joiner alike.
	inflight map[pairKey]int
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets a custom logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTTL gives cached entitlements a lifetime. Without it, entries live
// until the owning tenant's context is invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// New creates a Gate backed by the given resolver.
func New(resolver Resolver, opts ...Option) *Gate {
	if resolver == nil {
		panic("featuregate: resolver cannot be nil")
	}

	g := &Gate{
		resolver: resolver,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries:  make(map[pairKey]entry),
		inflight: make(map[pairKey]int),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Check reports whether the tenant has access to the feature.
//
// Both arguments must be non-empty. Cached results are served directly;
// on a miss, concurrent checks for the same (tenant, feature) pair share
// one resolver call. A resolver failure is surfaced wrapped in
// ErrResolutionFailed and caches nothing.
func (g *Gate) Check(ctx context.Context, tenantID, feature string) (bool, error) {
	if tenantID == "" {
		return false, ErrInvalidTenantID
	}
	if feature == "" {
		return false, ErrInvalidFeature
	}

	key := pairKey{tenantID: tenantID, feature: feature}

	if e, ok := g.lookup(key); ok {
		return e.hasAccess, nil
	}

	// Mark the pair in flight before joining the singleflight barrier so
	// a concurrent Peek observes loading from the moment any caller
	// commits to resolving, not just once the leader's callback runs.
	g.beginInflight(key)
	defer g.endInflight(key)

	v, err, _ := g.sfg.Do(tenantID+"\x1f"+feature, func() (any, error) {
		// Double-check after the singleflight barrier.
		if e, ok := g.lookup(key); ok {
			return e.hasAccess, nil
		}

		allowed, err := g.resolver.Resolve(ctx, tenantID, feature)
		if err != nil {
			g.logger.Warn("featuregate: feature resolution failed",
				slog.String("tenant_id", tenantID),
				slog.String("feature", feature),
				slog.Any("error", err))
			return false, errors.Join(ErrResolutionFailed, err)
		}

		g.store(key, allowed)
		return allowed, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Peek reports the current state of a (tenant, feature) pair without
// blocking: StatusLoading while a check is in flight, StatusGranted or
// StatusDenied for a cached result. The second return value is false if
// the pair has never been checked.
func (g *Gate) Peek(tenantID, feature string) (Result, bool) {
	key := pairKey{tenantID: tenantID, feature: feature}

	g.mu.RLock()
	defer g.mu.RUnlock()

	// A settled entry wins over the in-flight marker: joiners may still
	// be returning from Check after the result landed.
	if e, ok := g.entries[key]; ok && !g.expired(e) {
		status := StatusDenied
		if e.hasAccess {
			status = StatusGranted
		}
		return Result{Status: status, CheckedAt: e.checkedAt}, true
	}

	if g.inflight[key] > 0 {
		return Result{Status: StatusLoading}, true
	}

	return Result{}, false
}

// InvalidateTenant drops every cached entitlement for the tenant.
// Entitlements are derived from the tenant context and must not outlive
// it; wire this to the context cache with BindInvalidation. Entries for
// other tenants are untouched.
func (g *Gate) InvalidateTenant(tenantID string) {
	if tenantID == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for key := range g.entries {
		if key.tenantID == tenantID {
			delete(g.entries, key)
		}
	}
}

// InvalidationSource is the subscription surface of the tenant context
// cache. It is satisfied by *tenantctx.Cache.
type InvalidationSource interface {
	OnInvalidate(fn func(tenantID string)) func()
}

// BindInvalidation subscribes the gate to tenant invalidations so feature
// entitlements are dropped together with the context they were computed
// against. Returns the disposer of the underlying subscription.
func (g *Gate) BindInvalidation(src InvalidationSource) func() {
	return src.OnInvalidate(g.InvalidateTenant)
}

func (g *Gate) lookup(key pairKey) (entry, bool) {
	g.mu.RLock()
	e, ok := g.entries[key]
	g.mu.RUnlock()
	if !ok {
		return entry{}, false
	}
	if g.expired(e) {
		g.mu.Lock()
		// Re-check under the write lock: another goroutine may have
		// refreshed the entry meanwhile.
		if cur, still := g.entries[key]; still && g.expired(cur) {
			delete(g.entries, key)
		}
		g.mu.Unlock()
		return entry{}, false
	}
	return e, true
}

func (g *Gate) expired(e entry) bool {
	return g.ttl > 0 && time.Since(e.checkedAt) > g.ttl
}

func (g *Gate) store(key pairKey, allowed bool) {
	g.mu.Lock()
	g.entries[key] = entry{hasAccess: allowed, checkedAt: time.Now()}
	g.mu.Unlock()
}

func (g *Gate) beginInflight(key pairKey) {
	g.mu.Lock()
	g.inflight[key]++
	g.mu.Unlock()
}

func (g *Gate) endInflight(key pairKey) {
	g.mu.Lock()
	if n := g.inflight[key]; n <= 1 {
		delete(g.inflight, key)
	} else {
		g.inflight[key] = n - 1
	}
	g.mu.Unlock()
}
