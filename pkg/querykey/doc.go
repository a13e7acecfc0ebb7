// Package querykey derives cache and query keys scoped to the
// authenticated identity.
//
// Shared caches keyed by plain strings are the classic cross-tenant
// leakage vector: if two sessions compute the same key, one tenant can
// observe the other's cached data. The Factory closes that hole by
// prefixing every key with a partition derived from the authenticated
// identity reported by the IdentityProvider — never from a
// caller-supplied or URL-supplied tenant identifier, which could be
// forged or stale.
//
// Unauthenticated callers receive keys in a distinct "anon" partition
// that cannot collide with any identity partition; each such request is
// additionally logged and reported as a soft policy violation.
package querykey
