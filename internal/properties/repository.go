package properties

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// propertyColumns restricts listings by tenant only: all roles in an
// agency see all of its listings.
var propertyColumns = rbac.ScopeColumns{Tenant: "agency_id"}

// RepositoryPort defines persistence for properties.
type RepositoryPort interface {
	List(ctx context.Context, scope rbac.AccessScope, filter ListFilter, p shared.Pagination) ([]Property, int, error)
	Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Property, error)
	Create(ctx context.Context, property Property) error
	Update(ctx context.Context, property Property) error
	Delete(ctx context.Context, agencyID, id uuid.UUID) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const propertySelect = `SELECT id, agency_id, title, description, type, kind, price_centavos, bedrooms, area_m2, address, city, state, is_published, created_at, updated_at FROM properties`

func filterConds(filter ListFilter, args []any) ([]string, []any) {
	var conds []string
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conds = append(conds, fmt.Sprintf("city ILIKE $%d", len(args)))
	}
	if filter.MinPrice > 0 {
		args = append(args, filter.MinPrice)
		conds = append(conds, fmt.Sprintf("price_centavos >= $%d", len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		conds = append(conds, fmt.Sprintf("price_centavos <= $%d", len(args)))
	}
	if filter.PublishedOnly {
		conds = append(conds, "is_published")
	}
	return conds, args
}

// List returns a filtered page of properties with the total count.
func (r *Repository) List(ctx context.Context, scope rbac.AccessScope, filter ListFilter, p shared.Pagination) ([]Property, int, error) {
	var args []any
	cond, args := scope.Predicate(propertyColumns, args)
	conds := []string{cond}
	extra, args := filterConds(filter, args)
	conds = append(conds, extra...)
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, p.PerPage, p.Offset())
	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", propertySelect, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var properties []Property
	for rows.Next() {
		var pr Property
		if err := rows.Scan(&pr.ID, &pr.AgencyID, &pr.Title, &pr.Description, &pr.Type, &pr.Kind, &pr.PriceCentavos, &pr.Bedrooms, &pr.AreaM2, &pr.Address, &pr.City, &pr.State, &pr.IsPublished, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return nil, 0, err
		}
		properties = append(properties, pr)
	}
	return properties, total, rows.Err()
}

// Get returns a single property if the scope can see it.
func (r *Repository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Property, error) {
	args := []any{id}
	cond, args := scope.Predicate(propertyColumns, args)
	row := r.pool.QueryRow(ctx, propertySelect+" WHERE id = $1 AND "+cond, args...)
	var pr Property
	if err := row.Scan(&pr.ID, &pr.AgencyID, &pr.Title, &pr.Description, &pr.Type, &pr.Kind, &pr.PriceCentavos, &pr.Bedrooms, &pr.AreaM2, &pr.Address, &pr.City, &pr.State, &pr.IsPublished, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pr, nil
}

// Create inserts a new property.
func (r *Repository) Create(ctx context.Context, property Property) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO properties (id, agency_id, title, description, type, kind, price_centavos, bedrooms, area_m2, address, city, state, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`,
		property.ID, property.AgencyID, property.Title, property.Description, property.Type, property.Kind,
		property.PriceCentavos, property.Bedrooms, property.AreaM2, property.Address, property.City, property.State, property.IsPublished)
	return err
}

// Update rewrites a property's mutable fields.
func (r *Repository) Update(ctx context.Context, property Property) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE properties SET title = $1, description = $2, type = $3, kind = $4, price_centavos = $5, bedrooms = $6, area_m2 = $7, address = $8, city = $9, state = $10, is_published = $11, updated_at = NOW()
		 WHERE id = $12 AND agency_id = $13`,
		property.Title, property.Description, property.Type, property.Kind, property.PriceCentavos,
		property.Bedrooms, property.AreaM2, property.Address, property.City, property.State, property.IsPublished,
		property.ID, property.AgencyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a property from its agency.
func (r *Repository) Delete(ctx context.Context, agencyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1 AND agency_id = $2`, id, agencyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
