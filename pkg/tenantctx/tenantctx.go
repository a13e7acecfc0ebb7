package tenantctx

import (
	"context"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/policy"
)

// Source records how the current context was obtained.
type Source string

const (
	// SourceNone marks the unauthenticated context.
	SourceNone Source = ""

	// SourceCached marks a context served from the store without a
	// resolver round trip.
	SourceCached Source = "cached"

	// SourceFresh marks a context obtained from the resolver.
	SourceFresh Source = "fresh"

	// SourceFallback marks a context adopted from a degraded path
	// (e.g. a stale snapshot restored by an embedding application).
	SourceFallback Source = "fallback"
)

// Context is the resolved tenant for the current session. It is a value
// type: consumers receive copies and can never mutate cache state through
// it.
//
// The zero value is the unauthenticated context. A Context is never
// partially resolved — an empty TenantID always comes with RoleNone.
type Context struct {
	TenantID   string      `json:"tenant_id"`
	TenantName string      `json:"tenant_name"`
	Role       policy.Role `json:"role"`
	ResolvedAt time.Time   `json:"resolved_at"`
	Source     Source      `json:"source"`
}

// Authenticated reports whether the context refers to a resolved tenant.
func (c Context) Authenticated() bool {
	return c.TenantID != ""
}

// Info is the tenant data returned by a Resolver. The cache combines it
// with the requested tenant id and resolution metadata to build a Context.
type Info struct {
	Name string
	Role policy.Role
}

// Resolver loads tenant data from the backing tenant service.
//
// Implementations should return ErrTenantNotFound when the tenant does
// not exist and ErrUnavailable (possibly wrapped) on transport failures.
type Resolver interface {
	Resolve(ctx context.Context, tenantID string) (Info, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, tenantID string) (Info, error)

func (f ResolverFunc) Resolve(ctx context.Context, tenantID string) (Info, error) {
	return f(ctx, tenantID)
}
