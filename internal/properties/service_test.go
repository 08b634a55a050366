package properties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

type mockRepository struct {
	properties map[uuid.UUID]*Property
}

func newMockRepository() *mockRepository {
	return &mockRepository{properties: make(map[uuid.UUID]*Property)}
}

// visible mirrors the tenant-only column mapping the SQL repository
// uses: team and owner constraints do not apply to listings.
func visible(scope rbac.AccessScope, pr *Property) bool {
	if scope.Unrestricted {
		return true
	}
	return scope.TenantID != nil && *scope.TenantID == pr.AgencyID
}

func (m *mockRepository) List(ctx context.Context, scope rbac.AccessScope, filter ListFilter, p shared.Pagination) ([]Property, int, error) {
	var out []Property
	for _, pr := range m.properties {
		if !visible(scope, pr) {
			continue
		}
		if filter.PublishedOnly && !pr.IsPublished {
			continue
		}
		out = append(out, *pr)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Property, error) {
	pr, ok := m.properties[id]
	if !ok || !visible(scope, pr) {
		return nil, shared.ErrNotFound
	}
	copied := *pr
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, property Property) error {
	m.properties[property.ID] = &property
	return nil
}

func (m *mockRepository) Update(ctx context.Context, property Property) error {
	if _, ok := m.properties[property.ID]; !ok {
		return shared.ErrNotFound
	}
	m.properties[property.ID] = &property
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, agencyID, id uuid.UUID) error {
	pr, ok := m.properties[id]
	if !ok || pr.AgencyID != agencyID {
		return shared.ErrNotFound
	}
	delete(m.properties, id)
	return nil
}

func corretor(tenantID uuid.UUID) *rbac.Principal {
	return &rbac.Principal{ID: uuid.New(), Role: rbac.RoleCorretor, TenantID: &tenantID}
}

func validInput() Input {
	return Input{
		Title:         "Apartamento 2 quartos",
		Type:          TypeApartment,
		Kind:          KindSale,
		PriceCentavos: 45000000,
		Bedrooms:      2,
		AreaM2:        68,
		City:          "São Paulo",
		State:         "sp",
	}
}

func TestCreateProperty(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()

	property, err := svc.Create(context.Background(), corretor(tenantID), validInput())
	require.NoError(t, err)
	assert.Equal(t, tenantID, property.AgencyID)
	assert.Equal(t, "SP", property.State)
	assert.EqualValues(t, 45000000, property.PriceCentavos)
}

func TestCreatePropertyValidation(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	tenantID := uuid.New()

	cases := map[string]func(*Input){
		"empty title":    func(in *Input) { in.Title = " " },
		"unknown type":   func(in *Input) { in.Type = "CASTELO" },
		"unknown kind":   func(in *Input) { in.Kind = "PERMUTA" },
		"negative price": func(in *Input) { in.PriceCentavos = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), corretor(tenantID), in)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestListingsVisibleAcrossAgencyRoles(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	teamID := uuid.New()

	_, err := svc.Create(context.Background(), corretor(tenantID), validInput())
	require.NoError(t, err)

	// A corretor from another team in the same agency still sees the
	// listing: property scope narrows by tenant only.
	other := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleCorretor, TenantID: &tenantID, TeamID: &teamID}
	scope := rbac.DeriveScope(other)
	listed, total, err := svc.List(context.Background(), scope, ListFilter{}, shared.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, listed, 1)
}

func TestCrossTenantPropertyHidden(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	property, err := svc.Create(context.Background(), corretor(uuid.New()), validInput())
	require.NoError(t, err)

	stranger := corretor(uuid.New())
	_, err = svc.Get(context.Background(), rbac.DeriveScope(stranger), property.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteProperty(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit)
	tenantID := uuid.New()
	gestor := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleGestor, TenantID: &tenantID}

	property, err := svc.Create(context.Background(), gestor, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), gestor, rbac.DeriveScope(gestor), property.ID))
	assert.Empty(t, repo.properties)

	var actions []string
	for _, rec := range audit.records {
		actions = append(actions, rec.Action)
	}
	assert.Contains(t, actions, "property.delete")
}

type mockAudit struct {
	records []shared.AuditLog
}

func (m *mockAudit) Record(ctx context.Context, log shared.AuditLog) error {
	m.records = append(m.records, log)
	return nil
}
