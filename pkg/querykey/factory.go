package querykey

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

const (
	// tenantPrefix partitions keys belonging to an authenticated identity.
	tenantPrefix = "tenant:"

	// anonPrefix partitions keys produced without an authenticated
	// identity. It can never collide with the tenant partition because
	// tenant keys always carry a fixed-format UUID segment.
	anonPrefix = "anon:"
)

// IdentityProvider exposes the currently authenticated identity. The
// accessor is synchronous; implementations typically read session state
// that was established earlier in the request lifecycle.
type IdentityProvider interface {
	// CurrentIdentity returns the authenticated identity and true, or the
	// zero UUID and false when the caller is not authenticated.
	CurrentIdentity() (uuid.UUID, bool)
}

// IdentityProviderFunc adapts a function to the IdentityProvider interface.
type IdentityProviderFunc func() (uuid.UUID, bool)

func (f IdentityProviderFunc) CurrentIdentity() (uuid.UUID, bool) {
	return f()
}

// ViolationReporter receives a signal whenever a tenant-scoped key is
// requested without an authenticated identity. The base key is included
// so audit pipelines can identify the offending call site.
type ViolationReporter func(baseKey string)

// Factory derives cache and query keys that are scoped to the
// authenticated identity, never to caller-supplied tenant identifiers.
type Factory struct {
	identity IdentityProvider
	logger   *slog.Logger
	reporter ViolationReporter
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets a custom logger for policy-violation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithViolationReporter registers a callback invoked on every key request
// made without an authenticated identity.
func WithViolationReporter(reporter ViolationReporter) Option {
	return func(f *Factory) {
		f.reporter = reporter
	}
}

// New creates a key factory bound to the given identity provider.
func New(identity IdentityProvider, opts ...Option) *Factory {
	if identity == nil {
		panic("querykey: identity provider cannot be nil")
	}

	f := &Factory{
		identity: identity,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// TenantKey prefixes baseKey with a partition derived from the
// authenticated identity. For two distinct identities the produced keys
// are never equal for any baseKey: the identity segment has a fixed UUID
// format, so an attacker-controlled baseKey cannot forge a colon boundary
// into another identity's partition.
//
// Note: the partition is the authenticated identity, not a resolved
// tenant id. This preserves the established key layout; callers that need
// true tenant-level sharing must derive it above this layer.
//
// Without an authenticated identity the key lands in the anon partition.
// That is a soft policy violation — tenant-scoped data should never be
// requested pre-authentication — so it is reported, but the call still
// succeeds because some lookups legitimately run before login.
func (f *Factory) TenantKey(baseKey string) string {
	id, ok := f.identity.CurrentIdentity()
	if !ok {
		f.logger.Warn("tenant-scoped key requested without authenticated identity",
			slog.String("base_key", baseKey))
		if f.reporter != nil {
			f.reporter(baseKey)
		}
		return anonPrefix + baseKey
	}

	return tenantPrefix + id.String() + ":" + baseKey
}
