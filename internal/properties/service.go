package properties

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

// Service handles property business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns properties visible in the scope.
func (s *Service) List(ctx context.Context, scope rbac.AccessScope, filter ListFilter, p shared.Pagination) ([]Property, int, error) {
	return s.repo.List(ctx, scope, filter, p)
}

// Get returns a single property within the scope.
func (s *Service) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Property, error) {
	return s.repo.Get(ctx, scope, id)
}

// Input carries the fields accepted when creating or updating a
// property.
type Input struct {
	Title         string
	Description   string
	Type          PropertyType
	Kind          TransactionKind
	PriceCentavos int64
	Bedrooms      int
	AreaM2        float64
	Address       string
	City          string
	State         string
	IsPublished   bool
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title required", shared.ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown property type %q", shared.ErrValidation, in.Type)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: unknown transaction kind %q", shared.ErrValidation, in.Kind)
	}
	if in.PriceCentavos < 0 {
		return fmt.Errorf("%w: price cannot be negative", shared.ErrValidation)
	}
	return nil
}

// Create adds a listing to the actor's agency.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, input Input) (*Property, error) {
	if actor == nil || actor.TenantID == nil {
		return nil, shared.ErrValidation
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	property := Property{
		ID:            uuid.New(),
		AgencyID:      *actor.TenantID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Type:          input.Type,
		Kind:          input.Kind,
		PriceCentavos: input.PriceCentavos,
		Bedrooms:      input.Bedrooms,
		AreaM2:        input.AreaM2,
		Address:       strings.TrimSpace(input.Address),
		City:          strings.TrimSpace(input.City),
		State:         strings.ToUpper(strings.TrimSpace(input.State)),
		IsPublished:   input.IsPublished,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, property); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "property.create", property.ID, map[string]any{"title": property.Title})
	return &property, nil
}

// Update modifies a listing within the scope.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, scope rbac.AccessScope, id uuid.UUID, input Input) (*Property, error) {
	if actor == nil {
		return nil, shared.ErrValidation
	}
	property, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	property.Title = strings.TrimSpace(input.Title)
	property.Description = strings.TrimSpace(input.Description)
	property.Type = input.Type
	property.Kind = input.Kind
	property.PriceCentavos = input.PriceCentavos
	property.Bedrooms = input.Bedrooms
	property.AreaM2 = input.AreaM2
	property.Address = strings.TrimSpace(input.Address)
	property.City = strings.TrimSpace(input.City)
	property.State = strings.ToUpper(strings.TrimSpace(input.State))
	property.IsPublished = input.IsPublished
	if err := s.repo.Update(ctx, *property); err != nil {
		return nil, err
	}
	return property, nil
}

// Delete removes a listing within the scope.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, scope rbac.AccessScope, id uuid.UUID) error {
	if actor == nil {
		return shared.ErrValidation
	}
	property, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, property.AgencyID, property.ID); err != nil {
		return err
	}
	s.record(ctx, actor, "property.delete", property.ID, nil)
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
		Entity:   "property",
		EntityID: entityID.String(),
		Meta:     meta,
	})
}
