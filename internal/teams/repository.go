package teams

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imobiflow/imobiflow/internal/platform/db"
	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// teamColumns maps the teams table onto the scope predicate. Teams carry
// no per-user ownership, so a corretor scope collapses to their team.
var teamColumns = rbac.ScopeColumns{Tenant: "agency_id", Team: "id"}

// RepositoryPort defines persistence for teams.
type RepositoryPort interface {
	List(ctx context.Context, scope rbac.AccessScope) ([]Team, error)
	Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Team, error)
	Create(ctx context.Context, team Team) error
	Update(ctx context.Context, team Team) error
	Delete(ctx context.Context, agencyID, id uuid.UUID) error
	CountMembers(ctx context.Context, teamID uuid.UUID) (int, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const teamSelect = `SELECT id, agency_id, name, gestor_id, created_at, updated_at FROM teams`

// List returns teams visible in the scope.
func (r *Repository) List(ctx context.Context, scope rbac.AccessScope) ([]Team, error) {
	var args []any
	cond, args := scope.Predicate(teamColumns, args)
	rows, err := r.pool.Query(ctx, teamSelect+" WHERE "+cond+" ORDER BY name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.AgencyID, &t.Name, &t.GestorID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Get returns a single team if the scope can see it.
func (r *Repository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Team, error) {
	args := []any{id}
	cond, args := scope.Predicate(teamColumns, args)
	row := r.pool.QueryRow(ctx, teamSelect+" WHERE id = $1 AND "+cond, args...)
	var t Team
	if err := row.Scan(&t.ID, &t.AgencyID, &t.Name, &t.GestorID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a new team.
func (r *Repository) Create(ctx context.Context, team Team) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO teams (id, agency_id, name, gestor_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		team.ID, team.AgencyID, team.Name, team.GestorID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update rewrites a team's mutable fields.
func (r *Repository) Update(ctx context.Context, team Team) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE teams SET name = $1, gestor_id = $2, updated_at = NOW()
		 WHERE id = $3 AND agency_id = $4`,
		team.Name, team.GestorID, team.ID, team.AgencyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a team from its agency. The member check runs inside
// the same transaction so a concurrent assignment cannot slip through
// between the service's validation and the delete.
func (r *Repository) Delete(ctx context.Context, agencyID, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var members int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM users WHERE team_id = $1 AND is_active`, id).Scan(&members); err != nil {
			return err
		}
		if members > 0 {
			return shared.ErrValidation
		}
		tag, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1 AND agency_id = $2`, id, agencyID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountMembers returns how many active users belong to the team.
func (r *Repository) CountMembers(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE team_id = $1 AND is_active`, teamID).Scan(&n)
	return n, err
}

var _ RepositoryPort = (*Repository)(nil)
