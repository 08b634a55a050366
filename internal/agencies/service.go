package agencies

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

// Service handles agency business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns a page of agencies. Reserved for SUPER_ADMIN via the
// route guard.
func (s *Service) List(ctx context.Context, p shared.Pagination) ([]Agency, int, error) {
	return s.repo.List(ctx, p)
}

// Get returns an agency. Tenant users may only read their own.
func (s *Service) Get(ctx context.Context, actor *rbac.Principal, id uuid.UUID) (*Agency, error) {
	if actor == nil {
		return nil, shared.ErrNotFound
	}
	if actor.Role != rbac.RoleSuperAdmin {
		if actor.TenantID == nil || *actor.TenantID != id {
			return nil, shared.ErrNotFound
		}
	}
	return s.repo.Get(ctx, id)
}

// Input carries the fields accepted when creating or updating an agency.
type Input struct {
	Name      string
	TradeName string
	CNPJ      string
	Phone     string
	City      string
	State     string
}

// Create provisions a new tenant. SUPER_ADMIN only, enforced at the
// route.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, input Input) (*Agency, error) {
	if actor == nil {
		return nil, shared.ErrValidation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	agency := Agency{
		ID:        uuid.New(),
		Name:      name,
		TradeName: strings.TrimSpace(input.TradeName),
		CNPJ:      strings.TrimSpace(input.CNPJ),
		Phone:     strings.TrimSpace(input.Phone),
		City:      strings.TrimSpace(input.City),
		State:     strings.ToUpper(strings.TrimSpace(input.State)),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, agency); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "agency.create", agency.ID, map[string]any{"name": agency.Name})
	return &agency, nil
}

// Update modifies agency profile fields. Tenant admins may edit their
// own agency; SUPER_ADMIN may edit any and also toggle activation.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id uuid.UUID, input Input, isActive *bool) (*Agency, error) {
	agency, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	agency.Name = name
	agency.TradeName = strings.TrimSpace(input.TradeName)
	agency.CNPJ = strings.TrimSpace(input.CNPJ)
	agency.Phone = strings.TrimSpace(input.Phone)
	agency.City = strings.TrimSpace(input.City)
	agency.State = strings.ToUpper(strings.TrimSpace(input.State))
	if isActive != nil {
		if actor.Role != rbac.RoleSuperAdmin {
			return nil, fmt.Errorf("%w: cannot change activation", shared.ErrValidation)
		}
		agency.IsActive = *isActive
	}
	if err := s.repo.Update(ctx, *agency); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "agency.update", agency.ID, nil)
	return agency, nil
}

func (s *Service) record(ctx context.Context, actor *rbac.Principal, action string, entityID uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		TenantID: actor.TenantID,
		Action:   action,
		Entity:   "agency",
		EntityID: entityID.String(),
		Meta:     meta,
	})
}
