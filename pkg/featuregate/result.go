package featuregate

import "time"

// Status is the three-state view of a feature check exposed to UI-facing
// consumers. Denial carries no error payload; only transport failures
// are errors.
type Status string

const (
	// StatusLoading means a check for the pair is currently in flight.
	StatusLoading Status = "loading"

	// StatusGranted means the tenant has access to the feature.
	StatusGranted Status = "granted"

	// StatusDenied means the tenant does not have access. This is a
	// normal outcome, not a failure.
	StatusDenied Status = "denied"
)

// Result is a non-blocking snapshot of a feature check.
type Result struct {
	Status    Status
	CheckedAt time.Time
}

// Granted reports whether the result is a settled grant.
func (r Result) Granted() bool {
	return r.Status == StatusGranted
}

// Loading reports whether the check is still in flight.
func (r Result) Loading() bool {
	return r.Status == StatusLoading
}
