package access

// Category groups permissions by the dashboard area they govern. The set is
// closed: adding a category is a schema change, not runtime data.
type Category string

const (
	CategoryTeam    Category = "team"
	CategoryModules Category = "modules"
	CategoryBilling Category = "billing"
	CategoryReports Category = "reports"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTeam, CategoryModules, CategoryBilling, CategoryReports:
		return true
	}
	return false
}

// Permission is an atomic capability granted via role membership.
type Permission struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

const (
	PermManageTeam    = "manage_team"
	PermViewTeam      = "view_team"
	PermAssignModules = "assign_modules"
	PermUseModules    = "use_modules"
	PermManageBilling = "manage_billing"
	PermViewBilling   = "view_billing"
	PermCreateReports = "create_reports"
	PermViewReports   = "view_reports"
)

// BuiltinPermissions is the static catalog, fixed at process start.
var BuiltinPermissions = []Permission{
	{ID: PermManageTeam, Name: "Manage team members", Description: "Add, edit, and remove team members", Category: CategoryTeam},
	{ID: PermViewTeam, Name: "View team members", Description: "View team member details", Category: CategoryTeam},
	{ID: PermAssignModules, Name: "Assign modules", Description: "Assign modules to team members", Category: CategoryModules},
	{ID: PermUseModules, Name: "Use assigned modules", Description: "Access and use assigned modules", Category: CategoryModules},
	{ID: PermManageBilling, Name: "Manage billing", Description: "Update billing information and subscription", Category: CategoryBilling},
	{ID: PermViewBilling, Name: "View billing", Description: "View billing information and history", Category: CategoryBilling},
	{ID: PermCreateReports, Name: "Create reports", Description: "Generate new reports", Category: CategoryReports},
	{ID: PermViewReports, Name: "View reports", Description: "Access and view reports", Category: CategoryReports},
}

var permissionIndex = func() map[string]Permission {
	idx := make(map[string]Permission, len(BuiltinPermissions))
	for _, p := range BuiltinPermissions {
		idx[p.ID] = p
	}
	return idx
}()

// Permissions returns the full catalog in declaration order.
func Permissions() []Permission {
	out := make([]Permission, len(BuiltinPermissions))
	copy(out, BuiltinPermissions)
	return out
}

// PermissionsByCategory returns the catalog subset for the given category.
// An unknown category yields an empty result, not an error.
func PermissionsByCategory(c Category) []Permission {
	var out []Permission
	for _, p := range BuiltinPermissions {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// PermissionExists reports whether id names a catalog permission.
func PermissionExists(id string) bool {
	_, ok := permissionIndex[id]
	return ok
}
