package featuregate

import "errors"

var (
	// ErrInvalidTenantID is returned when Check receives an empty tenant id.
	ErrInvalidTenantID = errors.New("featuregate: invalid tenant identifier")

	// ErrInvalidFeature is returned when Check receives an empty feature name.
	ErrInvalidFeature = errors.New("featuregate: invalid feature name")

	// ErrUnavailable is returned by resolvers when the backing
	// entitlement service cannot be reached.
	ErrUnavailable = errors.New("featuregate: feature service unavailable")

	// ErrResolutionFailed wraps any resolver failure surfaced by Check.
	ErrResolutionFailed = errors.New("featuregate: feature resolution failed")
)
