// Package scopes implements permission pattern matching for the access
// policy layer.
//
// Permissions are plain strings, optionally hierarchical ("billing.view")
// and optionally matched by wildcards: "*" matches everything, "billing.*"
// matches any permission under the billing namespace.
//
// All functions are pure and operate on string slices; callers own the
// slices they pass in and nothing is mutated.
package scopes
