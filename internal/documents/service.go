package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imobiflow/imobiflow/internal/leads"
	"github.com/imobiflow/imobiflow/internal/properties"
	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// LeadPort resolves the lead a document is issued for. Scope filtering
// happens inside the lead lookup, so a corretor cannot issue documents
// for a colleague's lead.
type LeadPort interface {
	Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*leads.Lead, error)
}

// PropertyPort resolves the listing referenced by a document.
type PropertyPort interface {
	Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*properties.Property, error)
}

// AuditPort records security-relevant mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service renders and stores documents.
type Service struct {
	repo    RepositoryPort
	leadSrc LeadPort
	propSrc PropertyPort
	audit   AuditPort
	agency  func(ctx context.Context, id uuid.UUID) (string, error)
	now     func() time.Time
}

// NewService builds a Service instance. agencyName resolves an agency
// id to its display name for the rendered header.
func NewService(repo RepositoryPort, leadSrc LeadPort, propSrc PropertyPort, audit AuditPort, agencyName func(ctx context.Context, id uuid.UUID) (string, error)) *Service {
	return &Service{
		repo:    repo,
		leadSrc: leadSrc,
		propSrc: propSrc,
		audit:   audit,
		agency:  agencyName,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListByLead returns a lead's documents visible in the scope.
func (s *Service) ListByLead(ctx context.Context, scope rbac.AccessScope, leadID uuid.UUID) ([]Document, error) {
	return s.repo.ListByLead(ctx, scope, leadID)
}

// Get returns a single document within the scope.
func (s *Service) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Document, error) {
	return s.repo.Get(ctx, scope, id)
}

// IssueInput carries the fields accepted when issuing a document.
type IssueInput struct {
	LeadID        uuid.UUID
	PropertyID    uuid.UUID
	Kind          Kind
	BrokerName    string
	PriceCentavos int64
}

// Issue renders a document for a lead and property and stores it. The
// price defaults to the listing's asking price when not overridden.
func (s *Service) Issue(ctx context.Context, actor *rbac.Principal, scope rbac.AccessScope, input IssueInput) (*Document, error) {
	if actor == nil || actor.TenantID == nil {
		return nil, shared.ErrValidation
	}
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", shared.ErrValidation, input.Kind)
	}
	lead, err := s.leadSrc.Get(ctx, scope, input.LeadID)
	if err != nil {
		return nil, err
	}
	property, err := s.propSrc.Get(ctx, scope, input.PropertyID)
	if err != nil {
		return nil, err
	}
	agencyName, err := s.agency(ctx, *actor.TenantID)
	if err != nil {
		return nil, err
	}
	price := input.PriceCentavos
	if price == 0 {
		price = property.PriceCentavos
	}
	issuedAt := s.now()
	html, err := Render(input.Kind, RenderInput{
		AgencyName:    agencyName,
		LeadName:      lead.Name,
		BrokerName:    input.BrokerName,
		PropertyTitle: property.Title,
		PropertyAddr:  property.Address,
		PriceCentavos: price,
		Date:          issuedAt,
	})
	if err != nil {
		return nil, err
	}
	doc := Document{
		ID:         uuid.New(),
		AgencyID:   *actor.TenantID,
		OwnerID:    actor.ID,
		TeamID:     actor.TeamID,
		LeadID:     lead.ID,
		PropertyID: property.ID,
		Kind:       input.Kind,
		Title:      title(input.Kind, lead.Name),
		HTML:       html,
		CreatedAt:  issuedAt,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.ID,
			TenantID: actor.TenantID,
			Action:   "document.issue",
			Entity:   "document",
			EntityID: doc.ID.String(),
			Meta:     map[string]any{"kind": doc.Kind, "leadId": doc.LeadID},
		})
	}
	return &doc, nil
}

func title(kind Kind, leadName string) string {
	switch kind {
	case KindProposal:
		return "Proposta de Compra - " + leadName
	case KindVisitReceipt:
		return "Recibo de Visita - " + leadName
	}
	return leadName
}
