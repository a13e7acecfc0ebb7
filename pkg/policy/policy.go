package policy

import (
	"github.com/dmitrymomot/tenantkit/pkg/scopes"
)

// Role identifies a position in the fixed platform role hierarchy.
type Role string

const (
	// RoleNone is the unauthenticated role. It carries no permissions.
	RoleNone Role = ""

	RoleViewer        Role = "viewer"
	RoleAdmin         Role = "admin"
	RolePlatformAdmin Role = "platform_admin"
	RoleSuperAdmin    Role = "super_admin"
)

// Permission is a string-based permission scope. Permissions may be
// hierarchical ("billing.view") and role tables may use wildcards.
type Permission string

// Platform permissions.
const (
	PermViewDashboard       Permission = "view_dashboard"
	PermViewReports         Permission = "view_reports"
	PermManageUsers         Permission = "manage_users"
	PermManageSettings      Permission = "manage_settings"
	PermViewBilling         Permission = "view_billing"
	PermAccessSystemMetrics Permission = "access_system_metrics"
	PermManageTenants       Permission = "manage_tenants"
	PermManageBilling       Permission = "manage_billing"
	PermManagePlatform      Permission = "manage_platform"
	PermImpersonateUsers    Permission = "impersonate_users"
)

// roleDef declares a role's direct permissions and the role it extends.
type roleDef struct {
	perms    []Permission
	inherits Role
}

// The hierarchy is linear: super_admin > platform_admin > admin > viewer.
// Each role holds at least the permissions of the role it inherits.
var roleDefs = map[Role]roleDef{
	RoleViewer: {
		perms: []Permission{PermViewDashboard, PermViewReports},
	},
	RoleAdmin: {
		inherits: RoleViewer,
		perms: []Permission{
			PermManageUsers,
			PermManageSettings,
			PermViewBilling,
			PermAccessSystemMetrics,
		},
	},
	RolePlatformAdmin: {
		inherits: RoleAdmin,
		perms:    []Permission{PermManageTenants, PermManageBilling},
	},
	RoleSuperAdmin: {
		inherits: RolePlatformAdmin,
		perms:    []Permission{PermManagePlatform, PermImpersonateUsers},
	},
}

// permTable holds the fully expanded permission set per role, computed once
// at init and never mutated afterwards. Lookups are lock-free reads.
var permTable = expandRoles(roleDefs)

func expandRoles(defs map[Role]roleDef) map[Role][]string {
	table := make(map[Role][]string, len(defs))
	for role := range defs {
		var all []string
		// Walk the inheritance chain; visited guards against a cycle
		// introduced by a future edit to roleDefs.
		visited := make(map[Role]bool, len(defs))
		for r := role; r != RoleNone && !visited[r]; {
			visited[r] = true
			def, ok := defs[r]
			if !ok {
				break
			}
			for _, p := range def.perms {
				all = append(all, string(p))
			}
			r = def.inherits
		}
		table[role] = scopes.Normalize(all)
	}
	return table
}

// PermissionsFor returns the full permission set for a role, including
// inherited permissions. Unknown roles (and RoleNone) yield an empty set;
// the table never grants by default.
func PermissionsFor(role Role) []Permission {
	set, ok := permTable[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(set))
	for i, s := range set {
		out[i] = Permission(s)
	}
	return out
}

// HasPermission reports whether the role is granted the permission,
// directly or through inheritance. Unknown roles are denied.
func HasPermission(role Role, perm Permission) bool {
	set, ok := permTable[role]
	if !ok {
		return false
	}
	return scopes.Has(set, string(perm))
}

// Valid reports whether the role exists in the hierarchy.
func Valid(role Role) bool {
	_, ok := permTable[role]
	return ok
}

// Roles returns all known roles ordered from least to most privileged.
func Roles() []Role {
	return []Role{RoleViewer, RoleAdmin, RolePlatformAdmin, RoleSuperAdmin}
}
