package shared

// Permission codes granted through roles. Codes are stable identifiers and
// part of the frontend contract; never rename them once shipped.
const (
	PermViewCitizen   = "VIEW_CITIZEN"
	PermCreateCitizen = "CREATE_CITIZEN"
	PermUpdateCitizen = "UPDATE_CITIZEN"
	PermDeleteCitizen = "DELETE_CITIZEN"

	PermViewUser   = "VIEW_USER"
	PermCreateUser = "CREATE_USER"
	PermUpdateUser = "UPDATE_USER"
	PermDeleteUser = "DELETE_USER"

	PermViewDashboard = "VIEW_DASHBOARD"
	PermViewReports   = "VIEW_REPORTS"

	PermManageRoles = "MANAGE_ROLES"
)

// AllPermissions lists every grantable permission code. The seeder attaches
// the full set to the ADMIN role at provisioning time; ADMIN has no special
// bypass anywhere in the authorization path.
func AllPermissions() []string {
	return []string{
		PermViewCitizen,
		PermCreateCitizen,
		PermUpdateCitizen,
		PermDeleteCitizen,
		PermViewUser,
		PermCreateUser,
		PermUpdateUser,
		PermDeleteUser,
		PermViewDashboard,
		PermViewReports,
		PermManageRoles,
	}
}
