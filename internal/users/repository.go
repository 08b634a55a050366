package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// userColumns maps the users table onto the scope predicate. A corretor's
// "owned" user record is their own row.
var userColumns = rbac.ScopeColumns{Tenant: "agency_id", Team: "team_id", Owner: "id"}

// RepositoryPort defines persistence for users.
type RepositoryPort interface {
	List(ctx context.Context, scope rbac.AccessScope) ([]User, error)
	Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, user User) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userSelect = `SELECT id, agency_id, team_id, name, email, role, is_active, created_at, updated_at FROM users`

// List returns users visible in the scope.
func (r *Repository) List(ctx context.Context, scope rbac.AccessScope) ([]User, error) {
	var args []any
	cond, args := scope.Predicate(userColumns, args)
	rows, err := r.pool.Query(ctx, userSelect+" WHERE "+cond+" ORDER BY name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.AgencyID, &u.TeamID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns a single user if the scope can see them.
func (r *Repository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*User, error) {
	args := []any{id}
	cond, args := scope.Predicate(userColumns, args)
	row := r.pool.QueryRow(ctx, userSelect+" WHERE id = $1 AND "+cond, args...)
	var u User
	if err := row.Scan(&u.ID, &u.AgencyID, &u.TeamID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user account.
func (r *Repository) Create(ctx context.Context, user User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, agency_id, team_id, name, email, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		user.ID, user.AgencyID, user.TeamID, user.Name, user.Email, user.Role, user.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update rewrites a user's mutable fields.
func (r *Repository) Update(ctx context.Context, user User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $1, team_id = $2, role = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5 AND agency_id = $6`,
		user.Name, user.TeamID, user.Role, user.IsActive, user.ID, user.AgencyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
