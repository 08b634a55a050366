package teams

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

// Service handles team management business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns teams visible in the scope.
func (s *Service) List(ctx context.Context, scope rbac.AccessScope) ([]Team, error) {
	return s.repo.List(ctx, scope)
}

// Get returns a single team within the scope.
func (s *Service) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Team, error) {
	return s.repo.Get(ctx, scope, id)
}

// Input carries the fields accepted when creating or updating a team.
type Input struct {
	Name     string
	GestorID *uuid.UUID
}

// Create adds a team to the agency. A gestor may only create a team for
// themselves; admins may bind any gestor.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, agencyID uuid.UUID, input Input) (*Team, error) {
	if actor == nil {
		return nil, shared.ErrValidation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	gestorID := input.GestorID
	if actor.Role == rbac.RoleGestor {
		id := actor.ID
		gestorID = &id
	}
	team := Team{
		ID:        uuid.New(),
		AgencyID:  agencyID,
		Name:      name,
		GestorID:  gestorID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, team); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "team.create", team.ID, map[string]any{"name": team.Name})
	return &team, nil
}

// Update modifies a team within the actor's scope.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, scope rbac.AccessScope, id uuid.UUID, input Input) (*Team, error) {
	if actor == nil {
		return nil, shared.ErrValidation
	}
	team, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	// A gestor cannot hand their team to someone else.
	if actor.Role == rbac.RoleGestor && input.GestorID != nil && *input.GestorID != actor.ID {
		return nil, fmt.Errorf("%w: cannot reassign team", shared.ErrValidation)
	}
	team.Name = name
	if input.GestorID != nil {
		team.GestorID = input.GestorID
	}
	if err := s.repo.Update(ctx, *team); err != nil {
		return nil, err
	}
	return team, nil
}

// Delete removes an empty team. Teams with active members stay.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, scope rbac.AccessScope, id uuid.UUID) error {
	if actor == nil {
		return shared.ErrValidation
	}
	team, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	members, err := s.repo.CountMembers(ctx, team.ID)
	if err != nil {
		return err
	}
	if members > 0 {
		return fmt.Errorf("%w: team still has members", shared.ErrValidation)
	}
	if err := s.repo.Delete(ctx, team.AgencyID, team.ID); err != nil {
		return err
	}
	s.record(ctx, actor, "team.delete", team.ID, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actor *rbac.Principal, action string, entityID uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		TenantID: actor.TenantID,
		Action:   action,
		Entity:   "team",
		EntityID: entityID.String(),
		Meta:     meta,
	})
}
