package rbac

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccessScope constrains every data query issued on behalf of a principal.
// It is derived once per request and carried in the request context; data
// access must apply it as a filter predicate on every read and write.
//
// The zero value is the deny-all scope: no tenant and not unrestricted.
// Anonymous requests therefore fail closed even if a handler forgets to
// check for a principal.
type AccessScope struct {
	TenantID     *uuid.UUID `json:"tenantId,omitempty"`
	TeamID       *uuid.UUID `json:"teamId,omitempty"`
	OwnerID      *uuid.UUID `json:"ownerId,omitempty"`
	Unrestricted bool       `json:"unrestricted"`
}

// DeriveScope computes the access scope for a principal. It is a pure
// function: no storage or network access, identical output for identical
// input. A nil principal yields the deny-all scope.
//
// Policy: SUPER_ADMIN is unrestricted; ADMIN and AUTONOMO see their whole
// tenant; GESTOR sees their team within the tenant; CORRETOR sees only
// records they own. A GESTOR without a team narrows to self rather than
// widening to the tenant.
func DeriveScope(p *Principal) AccessScope {
	if p == nil {
		return AccessScope{}
	}
	switch p.Role {
	case RoleSuperAdmin:
		return AccessScope{Unrestricted: true}
	case RoleAdmin, RoleAutonomo:
		return AccessScope{TenantID: p.TenantID}
	case RoleGestor:
		if p.TeamID == nil {
			owner := p.ID
			return AccessScope{TenantID: p.TenantID, OwnerID: &owner}
		}
		return AccessScope{TenantID: p.TenantID, TeamID: p.TeamID}
	case RoleCorretor:
		owner := p.ID
		return AccessScope{TenantID: p.TenantID, OwnerID: &owner}
	}
	return AccessScope{}
}

// DenyAll reports whether the scope matches no rows at all.
func (s AccessScope) DenyAll() bool {
	return !s.Unrestricted && s.TenantID == nil
}

// ScopeColumns names the columns a table exposes for scope filtering.
// Team and Owner may be empty for tables without team or owner semantics,
// in which case those constraints are skipped; Tenant is mandatory.
type ScopeColumns struct {
	Tenant string
	Team   string
	Owner  string
}

// Predicate renders the scope as a SQL condition, appending bind values to
// args. Repositories embed the returned fragment in their WHERE clauses so
// that tenant isolation is enforced on the database side of every query.
func (s AccessScope) Predicate(cols ScopeColumns, args []any) (string, []any) {
	if s.Unrestricted {
		return "TRUE", args
	}
	if s.DenyAll() || cols.Tenant == "" {
		return "FALSE", args
	}
	args = append(args, *s.TenantID)
	conds := []string{fmt.Sprintf("%s = $%d", cols.Tenant, len(args))}
	if s.TeamID != nil && cols.Team != "" {
		args = append(args, *s.TeamID)
		conds = append(conds, fmt.Sprintf("%s = $%d", cols.Team, len(args)))
	}
	if s.OwnerID != nil && cols.Owner != "" {
		args = append(args, *s.OwnerID)
		conds = append(conds, fmt.Sprintf("%s = $%d", cols.Owner, len(args)))
	}
	return "(" + strings.Join(conds, " AND ") + ")", args
}

// Allows reports whether a row with the given tenant/team/owner ids falls
// inside the scope. Services use it to validate writes against records
// fetched outside the scoped query path.
func (s AccessScope) Allows(tenantID uuid.UUID, teamID, ownerID *uuid.UUID) bool {
	if s.Unrestricted {
		return true
	}
	if s.DenyAll() || *s.TenantID != tenantID {
		return false
	}
	if s.TeamID != nil && (teamID == nil || *teamID != *s.TeamID) {
		return false
	}
	if s.OwnerID != nil && (ownerID == nil || *ownerID != *s.OwnerID) {
		return false
	}
	return true
}
