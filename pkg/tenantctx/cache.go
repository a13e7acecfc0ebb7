package tenantctx

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is the authoritative source of "what tenant is this session
// acting as". It serves the last known context synchronously, resolves
// tenants through the injected Resolver with per-id single-flight
// de-duplication, caches resolved contexts in a Store, and fans out
// every context change to subscribers.
//
// Construct one Cache per process scope; all collaborators are injected
// so tests can run isolated instances.
type Cache struct {
	resolver Resolver
	store    Store
	ttl      time.Duration
	logger   *slog.Logger

	sfg singleflight.Group

	// mu guards current and both registries. notifyMu serializes
	// subscriber delivery; it is acquired before mu is released so
	// notifications fire in the order state transitions occur.
	mu       sync.Mutex
	notifyMu sync.Mutex
	current  Context
	subs     map[uint64]func(Context)
	hooks    map[uint64]func(string)
	nextID   uint64
}

// New creates a Cache backed by the given resolver.
func New(resolver Resolver, opts ...Option) *Cache {
	if resolver == nil {
		panic("tenantctx: resolver cannot be nil")
	}

	c := &Cache{
		resolver: resolver,
		ttl:      DefaultTTL,
		subs:     make(map[uint64]func(Context)),
		hooks:    make(map[uint64]func(string)),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.logger == nil {
		c.logger = discardLogger()
	}

	return c
}

// Current returns the last known context without blocking. If nothing has
// ever resolved it returns the unauthenticated context.
func (c *Cache) Current() Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetTenant makes tenantID the live context.
//
// A cached entry is adopted without a resolver round trip. Concurrent
// calls for the same id share a single in-flight resolution. On success
// the resolved context is stored, adopted as the live context, and all
// subscribers are notified before SetTenant returns — a caller can never
// observe a stale Current() after an awaited SetTenant it issued itself.
//
// On failure nothing is cached, the live context is untouched, and the
// returned error wraps ErrResolutionFailed along with the resolver's
// cause.
func (c *Cache) SetTenant(ctx context.Context, tenantID string) (Context, error) {
	// Canonicalize once so the store, the singleflight group, and the
	// resulting context all key on the same id.
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return Context{}, ErrInvalidTenantID
	}

	if cached, ok := c.store.Get(ctx, tenantID); ok {
		cached.Source = SourceCached
		c.adopt(cached)
		return cached, nil
	}

	v, err, _ := c.sfg.Do(tenantID, func() (any, error) {
		// Double-check after the singleflight barrier: a previous flight
		// may have stored the entry while this caller queued.
		if cached, ok := c.store.Get(ctx, tenantID); ok {
			cached.Source = SourceCached
			c.adopt(cached)
			return cached, nil
		}

		info, err := c.resolver.Resolve(ctx, tenantID)
		if err != nil {
			return Context{}, errors.Join(ErrResolutionFailed, err)
		}

		resolved := Context{
			TenantID:   tenantID,
			TenantName: info.Name,
			Role:       info.Role,
			ResolvedAt: time.Now(),
			Source:     SourceFresh,
		}
		c.store.Set(ctx, tenantID, resolved, c.ttl)

		// Adopt inside the flight so subscribers observe the update no
		// later than any caller sharing this resolution.
		c.adopt(resolved)
		return resolved, nil
	})
	if err != nil {
		return Context{}, err
	}
	return v.(Context), nil
}

// Invalidate drops the cached entry for tenantID and fires invalidation
// hooks. It does not touch the live context and does not notify context
// subscribers — invalidation is a hint, not a new value; the next
// SetTenant for the id performs a fresh resolution and notifies then.
//
// An in-flight resolution for the id is not affected.
func (c *Cache) Invalidate(ctx context.Context, tenantID string) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return
	}

	c.store.Delete(ctx, tenantID)

	c.mu.Lock()
	hooks := make([]func(string), 0, len(c.hooks))
	for _, fn := range c.hooks {
		hooks = append(hooks, fn)
	}
	c.mu.Unlock()

	for _, fn := range hooks {
		c.invokeHook(fn, tenantID)
	}
}

// Clear resets the live context to the unauthenticated value and notifies
// subscribers. Cached per-tenant entries survive and remain valid for the
// next SetTenant.
func (c *Cache) Clear() {
	c.adopt(Context{})
}

// Subscribe registers fn for notification on every context change,
// including Clear. It returns a disposer; calling it removes only this
// subscription. A subscriber registered while a notification is being
// delivered does not receive that in-progress notification.
func (c *Cache) Subscribe(fn func(Context)) func() {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// OnInvalidate registers fn to run whenever a tenant's cached entry is
// invalidated. Feature caches use this to drop entitlement entries that
// were computed against the invalidated context. Returns a disposer.
func (c *Cache) OnInvalidate(fn func(tenantID string)) func() {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.hooks[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.hooks, id)
			c.mu.Unlock()
		})
	}
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// adopt installs next as the live context and delivers it to a snapshot
// of the subscriber set. The delivery lock is taken before the state lock
// is released, so concurrent transitions notify in the order they
// occurred, and subscribers may safely call Current, Subscribe, or the
// disposer from their callback.
func (c *Cache) adopt(next Context) {
	c.mu.Lock()
	c.current = next
	subs := make([]func(Context), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, fn := range subs {
		c.invokeSub(fn, next)
	}
}

// invokeSub isolates a single subscriber: a panicking callback is logged
// and must not prevent delivery to the remaining subscribers.
func (c *Cache) invokeSub(fn func(Context), next Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("tenantctx: context subscriber panicked",
				slog.Any("panic", r),
				slog.String("tenant_id", next.TenantID))
		}
	}()
	fn(next)
}

func (c *Cache) invokeHook(fn func(string), tenantID string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("tenantctx: invalidation hook panicked",
				slog.Any("panic", r),
				slog.String("tenant_id", tenantID))
		}
	}()
	fn(tenantID)
}
