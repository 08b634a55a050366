// Package users manages agency user accounts, their roles and team
// membership.
package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/imobiflow/imobiflow/internal/rbac"
)

// User represents a user account within an agency.
type User struct {
	ID        uuid.UUID  `json:"id"`
	AgencyID  uuid.UUID  `json:"agencyId"`
	TeamID    *uuid.UUID `json:"teamId,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      rbac.Role  `json:"role"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Principal projects the user as an authenticatable principal.
func (u User) Principal() rbac.Principal {
	agencyID := u.AgencyID
	return rbac.Principal{ID: u.ID, Role: u.Role, TenantID: &agencyID, TeamID: u.TeamID}
}
