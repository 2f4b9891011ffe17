package rbac

// permission names referenced directly by routes; the full catalog lives in
// internal/catalog/catalog.yaml
const (
	ViewUsers   = "view_users"
	CreateUsers = "create_users"
	EditUsers   = "edit_users"
	DeleteUsers = "delete_users"

	ViewRoles   = "view_roles"
	ManageRoles = "manage_roles"

	ViewPermissions   = "view_permissions"
	ManagePermissions = "manage_permissions"

	ViewReports = "view_reports"
)

// Role names
const (
	RoleSuperAdmin = "superadmin" // bypasses every capability check
)

// Permission categories
const (
	CategoryUsers       = "users"
	CategoryRoles       = "roles"
	CategoryPermissions = "permissions"
	CategorySamiti      = "samiti"
)
