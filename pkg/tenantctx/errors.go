package tenantctx

import "errors"

var (
	// ErrInvalidTenantID is returned when an operation receives an empty
	// or blank tenant identifier.
	ErrInvalidTenantID = errors.New("tenantctx: invalid tenant identifier")

	// ErrTenantNotFound is returned by resolvers when no tenant matches
	// the identifier.
	ErrTenantNotFound = errors.New("tenantctx: tenant not found")

	// ErrUnavailable is returned by resolvers when the backing tenant
	// service cannot be reached.
	ErrUnavailable = errors.New("tenantctx: tenant service unavailable")

	// ErrResolutionFailed wraps any resolver failure surfaced by
	// SetTenant. The underlying cause is joined and can be inspected
	// with errors.Is.
	ErrResolutionFailed = errors.New("tenantctx: tenant resolution failed")
)
