package constants

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]Role{
	ViewDashboard:      {RoleAdmin, RoleLeader, RoleClient},
	ViewClients:        {RoleAdmin, RoleLeader, RoleClient},
	ManageClients:      {RoleAdmin},
	ManageMasters:      {RoleAdmin},
	ViewTransactions:   {RoleAdmin, RoleLeader, RoleClient},
	ManageTransactions: {RoleAdmin},
	ImportData:         {RoleAdmin},
	ViewRequests:       {RoleAdmin, RoleLeader, RoleClient},
	CreateRequests:     {RoleAdmin, RoleLeader, RoleClient},
	ReviewRequests:     {RoleAdmin},
	ViewOffers:         {RoleAdmin, RoleLeader, RoleClient},
	ManageOffers:       {RoleAdmin},
	UploadDocuments:    {RoleAdmin, RoleLeader, RoleClient},
	ViewReconciliation: {RoleAdmin},
}

// DefaultModuleAccess is seeded into mst_roles.module_access for the canonical roles.
var DefaultModuleAccess = map[string][]string{
	Admin:  {"dashboard", "clients", "transactions", "requests", "masters", "imports", "offers", "reports"},
	Leader: {"dashboard", "clients", "transactions", "requests", "offers"},
	Client: {"dashboard", "transactions", "requests", "offers"},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission string, role Role) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
