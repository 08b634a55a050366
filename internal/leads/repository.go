package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// leadColumns maps the leads table onto the scope predicate.
var leadColumns = rbac.ScopeColumns{Tenant: "tenant_id", Team: "team_id", Owner: "owner_id"}

// RepositoryPort defines persistence for leads. Every read and write takes
// the request's access scope; the scope predicate is applied inside the
// SQL so rows outside the caller's tenant/team/ownership never leave the
// database.
type RepositoryPort interface {
	List(ctx context.Context, scope rbac.AccessScope, filter ListFilter) ([]Lead, int, error)
	Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Lead, error)
	Create(ctx context.Context, lead Lead) error
	Update(ctx context.Context, scope rbac.AccessScope, lead Lead) error
	UpdateStage(ctx context.Context, scope rbac.AccessScope, id uuid.UUID, stage Stage) error
	Delete(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) error
	ListUnassigned(ctx context.Context, tenantID uuid.UUID) ([]Lead, error)
	ListActiveCorretores(ctx context.Context, tenantID uuid.UUID, teamID uuid.UUID) ([]uuid.UUID, error)
	Assign(ctx context.Context, tenantID, leadID, ownerID uuid.UUID, teamID uuid.UUID) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadSelect = `SELECT id, tenant_id, team_id, owner_id, property_id, name, email, phone, source, stage, created_at, updated_at FROM leads`

// List returns leads visible in the scope, newest first.
func (r *Repository) List(ctx context.Context, scope rbac.AccessScope, filter ListFilter) ([]Lead, int, error) {
	var args []any
	cond, args := scope.Predicate(leadColumns, args)
	where := "WHERE " + cond
	if filter.Stage != "" {
		args = append(args, filter.Stage)
		where += fmt.Sprintf(" AND stage = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf("%s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		leadSelect, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Get returns a single lead if the scope can see it.
func (r *Repository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Lead, error) {
	args := []any{id}
	cond, args := scope.Predicate(leadColumns, args)
	row := r.pool.QueryRow(ctx, leadSelect+" WHERE id = $1 AND "+cond, args...)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return lead, nil
}

// Create inserts a new lead.
func (r *Repository) Create(ctx context.Context, lead Lead) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO leads (id, tenant_id, team_id, owner_id, property_id, name, email, phone, source, stage, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`,
		lead.ID, lead.TenantID, lead.TeamID, lead.OwnerID, lead.PropertyID,
		lead.Name, lead.Email, lead.Phone, lead.Source, lead.Stage)
	return err
}

// Update rewrites a lead's contact fields within the scope.
func (r *Repository) Update(ctx context.Context, scope rbac.AccessScope, lead Lead) error {
	args := []any{lead.Name, lead.Email, lead.Phone, lead.Source, lead.PropertyID, lead.ID}
	cond, args := scope.Predicate(leadColumns, args)
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET name = $1, email = $2, phone = $3, source = $4, property_id = $5, updated_at = NOW()
		 WHERE id = $6 AND `+cond, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStage moves a lead to a new stage within the scope.
func (r *Repository) UpdateStage(ctx context.Context, scope rbac.AccessScope, id uuid.UUID, stage Stage) error {
	args := []any{stage, id}
	cond, args := scope.Predicate(leadColumns, args)
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET stage = $1, updated_at = NOW() WHERE id = $2 AND `+cond, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a lead within the scope.
func (r *Repository) Delete(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) error {
	args := []any{id}
	cond, args := scope.Predicate(leadColumns, args)
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND `+cond, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListUnassigned returns the tenant's leads without an owner, oldest first
// so distribution drains the backlog in arrival order.
func (r *Repository) ListUnassigned(ctx context.Context, tenantID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx,
		leadSelect+` WHERE tenant_id = $1 AND owner_id IS NULL AND stage NOT IN ($2, $3) ORDER BY created_at`,
		tenantID, StageFechado, StagePerdido)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

// ListActiveCorretores returns the ids of active corretores in a team,
// ordered by id for deterministic round-robin.
func (r *Repository) ListActiveCorretores(ctx context.Context, tenantID uuid.UUID, teamID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM users WHERE agency_id = $1 AND team_id = $2 AND role = $3 AND is_active ORDER BY id`,
		tenantID, teamID, rbac.RoleCorretor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Assign sets the owner and team of a lead. Tenant-checked so a stale
// distribution run can never move a lead across agencies.
func (r *Repository) Assign(ctx context.Context, tenantID, leadID, ownerID uuid.UUID, teamID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET owner_id = $1, team_id = $2, updated_at = NOW() WHERE id = $3 AND tenant_id = $4`,
		ownerID, teamID, leadID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	err := row.Scan(&lead.ID, &lead.TenantID, &lead.TeamID, &lead.OwnerID, &lead.PropertyID,
		&lead.Name, &lead.Email, &lead.Phone, &lead.Source, &lead.Stage, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func scanLeads(rows pgx.Rows) ([]Lead, error) {
	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
