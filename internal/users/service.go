package users

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

// Service handles user management business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns users visible in the scope.
func (s *Service) List(ctx context.Context, scope rbac.AccessScope) ([]User, error) {
	return s.repo.List(ctx, scope)
}

// Get returns a single user within the scope.
func (s *Service) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*User, error) {
	return s.repo.Get(ctx, scope, id)
}

// CreateInput carries the fields accepted when creating a user.
type CreateInput struct {
	Name   string
	Email  string
	Role   rbac.Role
	TeamID *uuid.UUID
}

// grantCeiling enforces that privilege only narrows down the hierarchy:
// nobody below SUPER_ADMIN may grant a role ranked at or above their own.
func grantCeiling(actor *rbac.Principal, granted rbac.Role) error {
	if actor.Role == rbac.RoleSuperAdmin {
		return nil
	}
	if granted.Rank() >= actor.Role.Rank() {
		return fmt.Errorf("%w: cannot grant role %s", shared.ErrValidation, granted)
	}
	return nil
}

// Create adds a user to the actor's agency. The granted role must rank
// strictly below the actor's own role; SUPER_ADMIN is exempt but still
// needs a target agency, which for them comes from the input scope.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, agencyID uuid.UUID, input CreateInput) (*User, error) {
	if actor == nil {
		return nil, shared.ErrValidation
	}
	if !input.Role.Valid() || input.Role == rbac.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: invalid role", shared.ErrValidation)
	}
	if err := grantCeiling(actor, input.Role); err != nil {
		return nil, err
	}
	if actor.Role != rbac.RoleSuperAdmin {
		if actor.TenantID == nil || *actor.TenantID != agencyID {
			return nil, shared.ErrNotFound
		}
	}
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email required", shared.ErrValidation)
	}
	user := User{
		ID:        uuid.New(),
		AgencyID:  agencyID,
		TeamID:    input.TeamID,
		Name:      name,
		Email:     email,
		Role:      input.Role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "user.create", user.ID, map[string]any{"role": user.Role})
	return &user, nil
}

// UpdateInput carries the mutable user fields.
type UpdateInput struct {
	Name     string
	Role     rbac.Role
	TeamID   *uuid.UUID
	IsActive bool
}

// Update modifies a user within the actor's scope. Both the target's
// current role and the new role must rank below the actor's.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, scope rbac.AccessScope, id uuid.UUID, input UpdateInput) (*User, error) {
	if actor == nil {
		return nil, shared.ErrValidation
	}
	user, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !input.Role.Valid() || input.Role == rbac.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: invalid role", shared.ErrValidation)
	}
	if err := grantCeiling(actor, user.Role); err != nil {
		return nil, err
	}
	if err := grantCeiling(actor, input.Role); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	roleChanged := user.Role != input.Role
	user.Name = name
	user.Role = input.Role
	user.TeamID = input.TeamID
	user.IsActive = input.IsActive
	if err := s.repo.Update(ctx, *user); err != nil {
		return nil, err
	}
	if roleChanged {
		s.record(ctx, actor, "user.role_change", user.ID, map[string]any{"role": user.Role})
	}
	return user, nil
}

// Deactivate disables a user account within the scope.
func (s *Service) Deactivate(ctx context.Context, actor *rbac.Principal, scope rbac.AccessScope, id uuid.UUID) error {
	if actor == nil {
		return shared.ErrValidation
	}
	user, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := grantCeiling(actor, user.Role); err != nil {
		return err
	}
	user.IsActive = false
	if err := s.repo.Update(ctx, *user); err != nil {
		return err
	}
	s.record(ctx, actor, "user.deactivate", user.ID, nil)
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
		Entity:   "user",
		EntityID: entityID.String(),
		Meta:     meta,
	})
}
