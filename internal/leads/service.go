package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// AuditPort records security-relevant mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// DistributorPort enqueues a distribution run for asynchronous execution.
type DistributorPort interface {
	EnqueueLeadDistribution(ctx context.Context, tenantID, teamID uuid.UUID) error
}

// Service handles lead business logic.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	distributor DistributorPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditPort, distributor DistributorPort) *Service {
	return &Service{repo: repo, audit: audit, distributor: distributor}
}

// CreateInput carries the fields accepted when capturing a lead.
type CreateInput struct {
	Name       string
	Email      string
	Phone      string
	Source     string
	PropertyID *uuid.UUID
}

// List returns leads visible in the scope plus pagination metadata.
func (s *Service) List(ctx context.Context, scope rbac.AccessScope, filter ListFilter) ([]Lead, shared.Pagination, error) {
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown stage %q", shared.ErrValidation, filter.Stage)
	}
	leads, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return leads, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get returns a single lead within the scope.
func (s *Service) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Lead, error) {
	return s.repo.Get(ctx, scope, id)
}

// Create captures a new lead for the principal's agency. A corretor
// captures leads as their own; other roles leave the lead unassigned for
// later distribution.
func (s *Service) Create(ctx context.Context, principal *rbac.Principal, input CreateInput) (*Lead, error) {
	if principal == nil || principal.TenantID == nil {
		return nil, shared.ErrValidation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	lead := Lead{
		ID:         uuid.New(),
		TenantID:   *principal.TenantID,
		PropertyID: input.PropertyID,
		Name:       name,
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		Source:     strings.TrimSpace(input.Source),
		Stage:      StageNovo,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if principal.Role == rbac.RoleCorretor {
		owner := principal.ID
		lead.OwnerID = &owner
		lead.TeamID = principal.TeamID
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update rewrites a lead's contact fields within the scope.
func (s *Service) Update(ctx context.Context, scope rbac.AccessScope, id uuid.UUID, input CreateInput) (*Lead, error) {
	lead, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	lead.Name = name
	lead.Email = strings.TrimSpace(input.Email)
	lead.Phone = strings.TrimSpace(input.Phone)
	lead.Source = strings.TrimSpace(input.Source)
	lead.PropertyID = input.PropertyID
	if err := s.repo.Update(ctx, scope, *lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Move advances a lead to a new pipeline stage. Terminal leads stay put.
func (s *Service) Move(ctx context.Context, scope rbac.AccessScope, id uuid.UUID, stage Stage) (*Lead, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: unknown stage %q", shared.ErrValidation, stage)
	}
	lead, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if lead.Stage.Terminal() && lead.Stage != stage {
		return nil, fmt.Errorf("%w: lead already %s", shared.ErrValidation, lead.Stage)
	}
	if err := s.repo.UpdateStage(ctx, scope, id, stage); err != nil {
		return nil, err
	}
	lead.Stage = stage
	return lead, nil
}

// Delete removes a lead within the scope and records the deletion.
func (s *Service) Delete(ctx context.Context, principal *rbac.Principal, scope rbac.AccessScope, id uuid.UUID) error {
	lead, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return err
	}
	if s.audit != nil && principal != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  principal.ID,
			TenantID: principal.TenantID,
			Action:   "lead.delete",
			Entity:   "lead",
			EntityID: lead.ID.String(),
			Meta:     map[string]any{"stage": lead.Stage, "name": lead.Name},
		})
	}
	return nil
}

// Distribute schedules a round-robin distribution of the agency's
// unassigned leads over a team's corretores.
func (s *Service) Distribute(ctx context.Context, principal *rbac.Principal, teamID uuid.UUID) error {
	if principal == nil || principal.TenantID == nil {
		return shared.ErrValidation
	}
	if principal.Role == rbac.RoleGestor && (principal.TeamID == nil || *principal.TeamID != teamID) {
		// A gestor distributes only to their own team.
		return shared.ErrNotFound
	}
	if err := s.distributor.EnqueueLeadDistribution(ctx, *principal.TenantID, teamID); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  principal.ID,
			TenantID: principal.TenantID,
			Action:   "lead.distribute",
			Entity:   "team",
			EntityID: teamID.String(),
		})
	}
	return nil
}

// RunDistribution performs the assignment. Executed by the worker; the
// tenant id comes from the task payload, never from a request scope.
func (s *Service) RunDistribution(ctx context.Context, tenantID, teamID uuid.UUID) (int, error) {
	corretores, err := s.repo.ListActiveCorretores(ctx, tenantID, teamID)
	if err != nil {
		return 0, err
	}
	if len(corretores) == 0 {
		return 0, nil
	}
	unassigned, err := s.repo.ListUnassigned(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	assigned := 0
	for i, lead := range unassigned {
		owner := corretores[i%len(corretores)]
		if err := s.repo.Assign(ctx, tenantID, lead.ID, owner, teamID); err != nil {
			return assigned, err
		}
		assigned++
	}
	return assigned, nil
}
