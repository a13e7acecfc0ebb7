// Package featuregate resolves tenant-scoped feature access.
//
// The Gate caches boolean entitlements per (tenant, feature) pair,
// de-duplicates concurrent lookups for the same pair into one resolver
// call, and exposes a non-blocking three-state view (loading, granted,
// denied) for UI-facing consumers. Denial is a valid outcome, never an
// error — only transport failures surface as errors.
//
// Entitlements are derived from the tenant context they were computed
// against, so they must be dropped when that context is invalidated:
//
//	cache := tenantctx.New(tenantResolver)
//	gate := featuregate.New(featureResolver)
//	defer gate.BindInvalidation(cache)()
//
//	allowed, err := gate.Check(ctx, "acme", "analytics")
package featuregate
