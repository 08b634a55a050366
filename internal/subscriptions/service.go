package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// Service wraps subscription business rules.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GateFor evaluates the gating flags for an agency. Unknown agencies get a
// blocking gate: an agency without a snapshot has no entitlement.
func (s *Service) GateFor(ctx context.Context, agencyID uuid.UUID) (Gate, error) {
	snapshot, err := s.repo.GetByAgency(ctx, agencyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Gate{NeedsPayment: true, Alert: AlertBlocking}, nil
		}
		return Gate{}, err
	}
	return Evaluate(*snapshot, s.now()), nil
}

// Get returns the raw snapshot for an agency if it falls inside the scope.
func (s *Service) Get(ctx context.Context, scope rbac.AccessScope, agencyID uuid.UUID) (*Snapshot, error) {
	if !scope.Allows(agencyID, nil, nil) {
		return nil, shared.ErrNotFound
	}
	return s.repo.GetByAgency(ctx, agencyID)
}

// Update replaces the snapshot for an agency. Route guards restrict this
// to SUPER_ADMIN.
func (s *Service) Update(ctx context.Context, agencyID uuid.UUID, status Status, trialEndsAt *time.Time, lifetime bool) (*Snapshot, error) {
	if !status.Valid() {
		return nil, shared.ErrValidation
	}
	snapshot := Snapshot{
		AgencyID:       agencyID,
		Status:         status,
		TrialEndsAt:    trialEndsAt,
		LifetimeAccess: lifetime,
	}
	if err := s.repo.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}
	return s.repo.GetByAgency(ctx, agencyID)
}
