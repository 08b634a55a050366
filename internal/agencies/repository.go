package agencies

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imobiflow/imobiflow/internal/shared"
)

// RepositoryPort defines persistence for agencies.
type RepositoryPort interface {
	List(ctx context.Context, p shared.Pagination) ([]Agency, int, error)
	Get(ctx context.Context, id uuid.UUID) (*Agency, error)
	Create(ctx context.Context, agency Agency) error
	Update(ctx context.Context, agency Agency) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const agencySelect = `SELECT id, name, trade_name, cnpj, phone, city, state, is_active, created_at, updated_at FROM agencies`

// List returns a page of agencies with the total count. Platform staff
// only; tenant users read their own agency through Get.
func (r *Repository) List(ctx context.Context, p shared.Pagination) ([]Agency, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agencies`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, agencySelect+` ORDER BY name LIMIT $1 OFFSET $2`, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var agencies []Agency
	for rows.Next() {
		var a Agency
		if err := rows.Scan(&a.ID, &a.Name, &a.TradeName, &a.CNPJ, &a.Phone, &a.City, &a.State, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		agencies = append(agencies, a)
	}
	return agencies, total, rows.Err()
}

// Get returns a single agency.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Agency, error) {
	row := r.pool.QueryRow(ctx, agencySelect+` WHERE id = $1`, id)
	var a Agency
	if err := row.Scan(&a.ID, &a.Name, &a.TradeName, &a.CNPJ, &a.Phone, &a.City, &a.State, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new agency.
func (r *Repository) Create(ctx context.Context, agency Agency) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO agencies (id, name, trade_name, cnpj, phone, city, state, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
		agency.ID, agency.Name, agency.TradeName, agency.CNPJ, agency.Phone, agency.City, agency.State, agency.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update rewrites an agency's mutable fields.
func (r *Repository) Update(ctx context.Context, agency Agency) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agencies SET name = $1, trade_name = $2, cnpj = $3, phone = $4, city = $5, state = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $8`,
		agency.Name, agency.TradeName, agency.CNPJ, agency.Phone, agency.City, agency.State, agency.IsActive, agency.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
