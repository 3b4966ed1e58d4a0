package constants

import "strings"

// Role is the closed set of role kinds. Role names stored in mst_roles are
// free text; ParseRole maps them onto this set and anything unrecognised is
// RoleUnknown, which sees nothing.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleLeader
	RoleClient
)

const (
	Admin  = "Admin"
	Leader = "Leader"
	Client = "Client"
)

// ValidRoles lists the canonical role names seeded into mst_roles.
var ValidRoles = []string{Admin, Leader, Client}

// ParseRole normalizes a stored role name (case and surrounding whitespace
// are ignored).
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin
	case "leader":
		return RoleLeader
	case "client":
		return RoleClient
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return Admin
	case RoleLeader:
		return Leader
	case RoleClient:
		return Client
	default:
		return "Unknown"
	}
}

// IsValidRole returns true if name resolves to a known role kind.
func IsValidRole(name string) bool {
	return ParseRole(name) != RoleUnknown
}
