// Package rbac implements role-based access control for the CRM: the role
// hierarchy, per-request access scopes, HTTP route guards and the capability
// projection consumed by the web client.
package rbac

import (
	"fmt"

	"github.com/google/uuid"
)

// Role identifies a privilege level within an agency.
type Role string

const (
	RoleCorretor   Role = "CORRETOR"
	RoleGestor     Role = "GESTOR"
	RoleAutonomo   Role = "AUTONOMO"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// roleRanks is the single canonical privilege ordering. Every surface that
// compares roles (guards, capability projection, user management) derives
// from this table; there is no second ordering anywhere.
var roleRanks = map[Role]int{
	RoleCorretor:   1,
	RoleGestor:     2,
	RoleAutonomo:   3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

// Roles returns all roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleCorretor, RoleGestor, RoleAutonomo, RoleAdmin, RoleSuperAdmin}
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("rbac: unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the role's position in the privilege order. Unknown roles
// rank below every valid role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether the role is at least as privileged as min.
// An invalid role never satisfies any minimum.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

func (r Role) in(set ...Role) bool {
	for _, candidate := range set {
		if r == candidate {
			return true
		}
	}
	return false
}

// Principal is the authenticated actor attached to a request by the session
// layer. It is immutable for the lifetime of the request and never persisted
// by this package.
type Principal struct {
	ID       uuid.UUID  `json:"id"`
	Role     Role       `json:"role"`
	TenantID *uuid.UUID `json:"tenantId,omitempty"`
	TeamID   *uuid.UUID `json:"teamId,omitempty"`
}
