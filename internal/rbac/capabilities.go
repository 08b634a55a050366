package rbac

// CapabilitySet is the boolean capability projection the web client uses for
// conditional rendering. It is advisory only: the client has no access to
// the real scope and can be trivially bypassed, so no security-relevant
// action may be gated by it alone. The route guards are the sole authority.
type CapabilitySet struct {
	Role               Role `json:"role"`
	CanManageAgency    bool `json:"canManageAgency"`
	CanManageTeam      bool `json:"canManageTeam"`
	CanCreateLeads     bool `json:"canCreateLeads"`
	CanDeleteLeads     bool `json:"canDeleteLeads"`
	CanDistributeLeads bool `json:"canDistributeLeads"`
	CanManageUsers     bool `json:"canManageUsers"`
	CanViewAllLeads    bool `json:"canViewAllLeads"`
	CanViewTeamLeads   bool `json:"canViewTeamLeads"`
	CanViewOwnLeads    bool `json:"canViewOwnLeads"`
}

// NewCapabilitySet projects a role onto its capability set. An invalid role
// yields the empty set.
func NewCapabilitySet(role Role) CapabilitySet {
	if !role.Valid() {
		return CapabilitySet{}
	}
	return CapabilitySet{
		Role:               role,
		CanManageAgency:    role.in(RoleAdmin, RoleAutonomo, RoleSuperAdmin),
		CanManageTeam:      role.in(RoleAdmin, RoleGestor, RoleSuperAdmin),
		CanCreateLeads:     true,
		CanDeleteLeads:     role.in(RoleGestor, RoleAdmin, RoleAutonomo, RoleSuperAdmin),
		CanDistributeLeads: role.in(RoleGestor, RoleAdmin, RoleSuperAdmin),
		CanManageUsers:     role.in(RoleGestor, RoleAdmin, RoleSuperAdmin),
		CanViewAllLeads:    role.in(RoleAdmin, RoleAutonomo, RoleSuperAdmin),
		CanViewTeamLeads:   role.AtLeast(RoleGestor),
		CanViewOwnLeads:    true,
	}
}

// HasRole reports whether the set was projected from the given role.
func (c CapabilitySet) HasRole(role Role) bool {
	return c.Role == role
}

// HasMinimumRole reports whether the source role is at least as privileged
// as min, using the same canonical ordering the route guards use.
func (c CapabilitySet) HasMinimumRole(min Role) bool {
	return c.Role.AtLeast(min)
}
