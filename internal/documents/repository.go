package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// documentColumns scopes documents like leads: by tenant, team and
// owning broker.
var documentColumns = rbac.ScopeColumns{Tenant: "agency_id", Team: "team_id", Owner: "owner_id"}

// RepositoryPort defines persistence for documents.
type RepositoryPort interface {
	ListByLead(ctx context.Context, scope rbac.AccessScope, leadID uuid.UUID) ([]Document, error)
	Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, doc Document) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const documentSelect = `SELECT id, agency_id, owner_id, team_id, lead_id, property_id, kind, title, html, created_at FROM documents`

// ListByLead returns a lead's documents visible in the scope.
func (r *Repository) ListByLead(ctx context.Context, scope rbac.AccessScope, leadID uuid.UUID) ([]Document, error) {
	args := []any{leadID}
	cond, args := scope.Predicate(documentColumns, args)
	rows, err := r.pool.Query(ctx, documentSelect+" WHERE lead_id = $1 AND "+cond+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.AgencyID, &d.OwnerID, &d.TeamID, &d.LeadID, &d.PropertyID, &d.Kind, &d.Title, &d.HTML, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Get returns a single document if the scope can see it.
func (r *Repository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Document, error) {
	args := []any{id}
	cond, args := scope.Predicate(documentColumns, args)
	row := r.pool.QueryRow(ctx, documentSelect+" WHERE id = $1 AND "+cond, args...)
	var d Document
	if err := row.Scan(&d.ID, &d.AgencyID, &d.OwnerID, &d.TeamID, &d.LeadID, &d.PropertyID, &d.Kind, &d.Title, &d.HTML, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts a rendered document.
func (r *Repository) Create(ctx context.Context, doc Document) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (id, agency_id, owner_id, team_id, lead_id, property_id, kind, title, html, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		doc.ID, doc.AgencyID, doc.OwnerID, doc.TeamID, doc.LeadID, doc.PropertyID, doc.Kind, doc.Title, doc.HTML)
	return err
}

var _ RepositoryPort = (*Repository)(nil)
