package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imobiflow/imobiflow/internal/shared"
)

// RepositoryPort defines persistence for subscription snapshots.
type RepositoryPort interface {
	GetByAgency(ctx context.Context, agencyID uuid.UUID) (*Snapshot, error)
	Upsert(ctx context.Context, snapshot Snapshot) error
	ListExpiredTrials(ctx context.Context, now time.Time) ([]Snapshot, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByAgency returns the snapshot for an agency.
func (r *Repository) GetByAgency(ctx context.Context, agencyID uuid.UUID) (*Snapshot, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT agency_id, status, trial_ends_at, lifetime_access, updated_at
		 FROM subscriptions WHERE agency_id = $1`, agencyID)
	var s Snapshot
	if err := row.Scan(&s.AgencyID, &s.Status, &s.TrialEndsAt, &s.LifetimeAccess, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Upsert writes the snapshot for an agency.
func (r *Repository) Upsert(ctx context.Context, snapshot Snapshot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subscriptions (agency_id, status, trial_ends_at, lifetime_access, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (agency_id) DO UPDATE
		 SET status = EXCLUDED.status,
		     trial_ends_at = EXCLUDED.trial_ends_at,
		     lifetime_access = EXCLUDED.lifetime_access,
		     updated_at = NOW()`,
		snapshot.AgencyID, snapshot.Status, snapshot.TrialEndsAt, snapshot.LifetimeAccess)
	return err
}

// ListExpiredTrials returns trial snapshots past their end date without
// lifetime access.
func (r *Repository) ListExpiredTrials(ctx context.Context, now time.Time) ([]Snapshot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT agency_id, status, trial_ends_at, lifetime_access, updated_at
		 FROM subscriptions
		 WHERE status = $1 AND lifetime_access = FALSE AND trial_ends_at IS NOT NULL AND trial_ends_at < $2
		 ORDER BY trial_ends_at`, StatusTrial, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.AgencyID, &s.Status, &s.TrialEndsAt, &s.LifetimeAccess, &s.UpdatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
