package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("Admin"))
	assert.Equal(t, RoleAdmin, ParseRole("  ADMIN "))
	assert.Equal(t, RoleLeader, ParseRole("leader"))
	assert.Equal(t, RoleClient, ParseRole("Client"))
	assert.Equal(t, RoleUnknown, ParseRole("superuser"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
}

func TestRoleString(t *testing.T) {
	for _, name := range ValidRoles {
		assert.Equal(t, name, ParseRole(name).String())
	}
	assert.Equal(t, "Unknown", RoleUnknown.String())
}

func TestAllowedRole(t *testing.T) {
	assert.True(t, AllowedRole(ManageMasters, RoleAdmin))
	assert.False(t, AllowedRole(ManageMasters, RoleLeader))
	assert.True(t, AllowedRole(ViewDashboard, RoleClient))
	assert.False(t, AllowedRole(ViewDashboard, RoleUnknown))
	assert.False(t, AllowedRole("no_such_permission", RoleAdmin))
}
