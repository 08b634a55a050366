package teams

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
	teams   map[uuid.UUID]*Team
	members map[uuid.UUID]int
}

func newMockRepository() *mockRepository {
	return &mockRepository{teams: make(map[uuid.UUID]*Team), members: make(map[uuid.UUID]int)}
}

func (m *mockRepository) List(ctx context.Context, scope rbac.AccessScope) ([]Team, error) {
	var out []Team
	for _, t := range m.teams {
		id := t.ID
		if scope.Allows(t.AgencyID, &id, nil) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	teamID := t.ID
	if !scope.Allows(t.AgencyID, &teamID, nil) {
		return nil, shared.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, team Team) error {
	m.teams[team.ID] = &team
	return nil
}

func (m *mockRepository) Update(ctx context.Context, team Team) error {
	if _, ok := m.teams[team.ID]; !ok {
		return shared.ErrNotFound
	}
	m.teams[team.ID] = &team
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, agencyID, id uuid.UUID) error {
	t, ok := m.teams[id]
	if !ok || t.AgencyID != agencyID {
		return shared.ErrNotFound
	}
	delete(m.teams, id)
	return nil
}

func (m *mockRepository) CountMembers(ctx context.Context, teamID uuid.UUID) (int, error) {
	return m.members[teamID], nil
}

func TestGestorCreatesTeamForThemselves(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	gestor := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleGestor, TenantID: &tenantID}

	other := uuid.New()
	team, err := svc.Create(context.Background(), gestor, tenantID, Input{Name: "Zona Sul", GestorID: &other})
	require.NoError(t, err)
	require.NotNil(t, team.GestorID)
	assert.Equal(t, gestor.ID, *team.GestorID, "gestor binding is forced to the actor")
}

func TestAdminBindsAnyGestor(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	adminP := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleAdmin, TenantID: &tenantID}
	gestorID := uuid.New()

	team, err := svc.Create(context.Background(), adminP, tenantID, Input{Name: "Centro", GestorID: &gestorID})
	require.NoError(t, err)
	require.NotNil(t, team.GestorID)
	assert.Equal(t, gestorID, *team.GestorID)
}

func TestGestorCannotReassignTeam(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	gestor := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleGestor, TenantID: &tenantID}

	team, err := svc.Create(context.Background(), gestor, tenantID, Input{Name: "Zona Sul"})
	require.NoError(t, err)

	gestor.TeamID = &team.ID
	scope := rbac.DeriveScope(gestor)
	other := uuid.New()
	_, err = svc.Update(context.Background(), gestor, scope, team.ID, Input{Name: "Zona Sul", GestorID: &other})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteRefusesNonEmptyTeam(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit)
	tenantID := uuid.New()
	adminP := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleAdmin, TenantID: &tenantID}

	team, err := svc.Create(context.Background(), adminP, tenantID, Input{Name: "Centro"})
	require.NoError(t, err)

	scope := rbac.DeriveScope(adminP)
	repo.members[team.ID] = 3
	err = svc.Delete(context.Background(), adminP, scope, team.ID)
	assert.ErrorIs(t, err, shared.ErrValidation)

	repo.members[team.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), adminP, scope, team.ID))
	assert.Empty(t, repo.teams)

	var actions []string
	for _, rec := range audit.records {
		actions = append(actions, rec.Action)
	}
	assert.Contains(t, actions, "team.delete")
}

func TestGetIsTenantScoped(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantA := uuid.New()
	tenantB := uuid.New()
	adminA := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleAdmin, TenantID: &tenantA}
	adminB := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleAdmin, TenantID: &tenantB}

	team, err := svc.Create(context.Background(), adminA, tenantA, Input{Name: "Zona Norte"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), rbac.DeriveScope(adminB), team.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.Get(context.Background(), rbac.DeriveScope(adminA), team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, got.ID)
}

type mockAudit struct {
	records []shared.AuditLog
}

func (m *mockAudit) Record(ctx context.Context, log shared.AuditLog) error {
	m.records = append(m.records, log)
	return nil
}
