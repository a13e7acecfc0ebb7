// Package policy evaluates role-based permissions over a fixed, immutable
// role hierarchy.
//
// The hierarchy is linear — super_admin inherits platform_admin, which
// inherits admin, which inherits viewer — and is expanded into a flat
// role → permission table once at package init. All lookups are pure
// reads over that table: there is no mutable state, no I/O, and no error
// path. Unknown roles resolve to an empty permission set, so every check
// fails closed.
//
// Usage:
//
//	if policy.HasPermission(role, policy.PermManageTenants) {
//		// allowed
//	}
//
//	if policy.CanViewBilling(role) {
//		// named predicate over the same table
//	}
package policy
