package access

import "time"

// Builtin role identifiers. Fixed so that seeds and module metadata can
// reference them by id as well as by name.
const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
	RoleViewer    = "viewer"
)

// BuiltinRoles returns the seeded role set. Callers receive fresh copies and
// may not mutate the stored builtins through the service.
func BuiltinRoles() []*Role {
	seeded := time.Time{}
	return []*Role{
		{
			ID:          RoleAdmin,
			Name:        "admin",
			Description: "Full administrative access to the company workspace",
			Permissions: []string{
				PermManageTeam, PermViewTeam, PermAssignModules, PermUseModules,
				PermManageBilling, PermViewBilling, PermCreateReports, PermViewReports,
			},
			AccessLevel: LevelFull,
			BuiltIn:     true,
			CreatedAt:   seeded,
		},
		{
			ID:          RoleDeveloper,
			Name:        "developer",
			Description: "Works with assigned modules and reports",
			Permissions: []string{
				PermViewTeam, PermAssignModules, PermUseModules,
				PermCreateReports, PermViewReports,
			},
			AccessLevel: LevelStandard,
			BuiltIn:     true,
			CreatedAt:   seeded,
		},
		{
			ID:          RoleViewer,
			Name:        "viewer",
			Description: "Read-only access to assigned modules",
			Permissions: []string{PermViewTeam, PermUseModules, PermViewReports},
			AccessLevel: LevelLimited,
			BuiltIn:     true,
			CreatedAt:   seeded,
		},
	}
}
