package policy

// Named predicates over the permission table. Each is a pure function of
// the role so access checks cannot depend on mutable state.

// CanManageTenants reports whether the role may create, suspend, or delete
// tenants.
func CanManageTenants(role Role) bool {
	return HasPermission(role, PermManageTenants)
}

// CanViewBilling reports whether the role may read billing information.
func CanViewBilling(role Role) bool {
	return HasPermission(role, PermViewBilling)
}

// CanManageBilling reports whether the role may change plans and payment
// settings.
func CanManageBilling(role Role) bool {
	return HasPermission(role, PermManageBilling)
}

// CanManageUsers reports whether the role may invite and remove users.
func CanManageUsers(role Role) bool {
	return HasPermission(role, PermManageUsers)
}

// CanAccessSystemMetrics reports whether the role may read operational
// metrics dashboards.
func CanAccessSystemMetrics(role Role) bool {
	return HasPermission(role, PermAccessSystemMetrics)
}

// CanManagePlatform reports whether the role may change platform-wide
// configuration.
func CanManagePlatform(role Role) bool {
	return HasPermission(role, PermManagePlatform)
}
