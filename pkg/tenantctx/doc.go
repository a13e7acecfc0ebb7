// Package tenantctx maintains the resolved tenant context for a session
// and keeps every interested component consistent with it.
//
// The Cache is the single authoritative owner of the live context.
// Consumers read it synchronously with Current, switch tenants with
// SetTenant, and observe changes through Subscribe. Resolved contexts
// are cached in a pluggable Store (in-memory by default, Redis-backed
// optionally) and invalidated explicitly or by TTL.
//
// # Guarantees
//
//   - Single-flight: concurrent SetTenant calls for the same tenant id
//     share one resolver call; joiners receive the same result.
//   - Ordering: subscribers are notified synchronously after a state
//     transition and before SetTenant or Clear returns to its caller,
//     in the order transitions occur.
//   - Isolation: a panicking subscriber is recovered and logged; it
//     cannot corrupt cache state or block delivery to other subscribers.
//   - Failure containment: a failed resolution caches nothing and leaves
//     the live context untouched.
//
// Subscriber callbacks run synchronously on the mutating goroutine and
// must not call SetTenant or Clear themselves; Current, Subscribe, and
// disposers are safe to call from a callback.
//
// # Usage
//
//	cache := tenantctx.New(resolver, tenantctx.WithTTL(10*time.Minute))
//	defer cache.Close()
//
//	unsubscribe := cache.Subscribe(func(tc tenantctx.Context) {
//		// react to tenant switches
//	})
//	defer unsubscribe()
//
//	tc, err := cache.SetTenant(ctx, "acme")
//	if err != nil {
//		// errors.Is(err, tenantctx.ErrResolutionFailed)
//	}
//	_ = tc.Role
package tenantctx
