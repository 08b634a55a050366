package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityMatrix(t *testing.T) {
	tests := []struct {
		role Role
		want CapabilitySet
	}{
		{RoleCorretor, CapabilitySet{
			Role:           RoleCorretor,
			CanCreateLeads: true,
			CanViewOwnLeads: true,
		}},
		{RoleGestor, CapabilitySet{
			Role:               RoleGestor,
			CanManageTeam:      true,
			CanCreateLeads:     true,
			CanDeleteLeads:     true,
			CanDistributeLeads: true,
			CanManageUsers:     true,
			CanViewTeamLeads:   true,
			CanViewOwnLeads:    true,
		}},
		{RoleAutonomo, CapabilitySet{
			Role:             RoleAutonomo,
			CanManageAgency:  true,
			CanCreateLeads:   true,
			CanDeleteLeads:   true,
			CanViewAllLeads:  true,
			CanViewTeamLeads: true,
			CanViewOwnLeads:  true,
		}},
		{RoleAdmin, CapabilitySet{
			Role:               RoleAdmin,
			CanManageAgency:    true,
			CanManageTeam:      true,
			CanCreateLeads:     true,
			CanDeleteLeads:     true,
			CanDistributeLeads: true,
			CanManageUsers:     true,
			CanViewAllLeads:    true,
			CanViewTeamLeads:   true,
			CanViewOwnLeads:    true,
		}},
		{RoleSuperAdmin, CapabilitySet{
			Role:               RoleSuperAdmin,
			CanManageAgency:    true,
			CanManageTeam:      true,
			CanCreateLeads:     true,
			CanDeleteLeads:     true,
			CanDistributeLeads: true,
			CanManageUsers:     true,
			CanViewAllLeads:    true,
			CanViewTeamLeads:   true,
			CanViewOwnLeads:    true,
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, NewCapabilitySet(tt.role))
		})
	}
}

func TestInvalidRoleHasNoCapabilities(t *testing.T) {
	assert.Equal(t, CapabilitySet{}, NewCapabilitySet(Role("MANAGER")))
}

// The projection and the route guards must agree on the hierarchy: both
// derive from the same rank table, so a capability check expressed as a
// minimum role has to match Role.AtLeast for every pair.
func TestProjectionAgreesWithGuardOrdering(t *testing.T) {
	for _, role := range Roles() {
		caps := NewCapabilitySet(role)
		for _, min := range Roles() {
			assert.Equal(t, role.AtLeast(min), caps.HasMinimumRole(min),
				"role %s min %s", role, min)
		}
		assert.Equal(t, role.AtLeast(RoleGestor), caps.CanViewTeamLeads, "role %s", role)
	}
}

func TestHasRole(t *testing.T) {
	caps := NewCapabilitySet(RoleGestor)
	assert.True(t, caps.HasRole(RoleGestor))
	assert.False(t, caps.HasRole(RoleAdmin))
}
