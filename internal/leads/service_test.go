package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

type mockRepository struct {
	leads      map[uuid.UUID]*Lead
	corretores []uuid.UUID

	assignments []uuid.UUID // owners in assignment order
	listErr     error
}

func newMockRepository() *mockRepository {
	return &mockRepository{leads: make(map[uuid.UUID]*Lead)}
}

func (m *mockRepository) visible(scope rbac.AccessScope, lead *Lead) bool {
	return scope.Allows(lead.TenantID, lead.TeamID, lead.OwnerID)
}

func (m *mockRepository) List(ctx context.Context, scope rbac.AccessScope, filter ListFilter) ([]Lead, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []Lead
	for _, lead := range m.leads {
		if m.visible(scope, lead) && (filter.Stage == "" || lead.Stage == filter.Stage) {
			out = append(out, *lead)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*Lead, error) {
	lead, ok := m.leads[id]
	if !ok || !m.visible(scope, lead) {
		return nil, shared.ErrNotFound
	}
	copied := *lead
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, lead Lead) error {
	m.leads[lead.ID] = &lead
	return nil
}

func (m *mockRepository) Update(ctx context.Context, scope rbac.AccessScope, lead Lead) error {
	existing, ok := m.leads[lead.ID]
	if !ok || !m.visible(scope, existing) {
		return shared.ErrNotFound
	}
	m.leads[lead.ID] = &lead
	return nil
}

func (m *mockRepository) UpdateStage(ctx context.Context, scope rbac.AccessScope, id uuid.UUID, stage Stage) error {
	lead, ok := m.leads[id]
	if !ok || !m.visible(scope, lead) {
		return shared.ErrNotFound
	}
	lead.Stage = stage
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) error {
	lead, ok := m.leads[id]
	if !ok || !m.visible(scope, lead) {
		return shared.ErrNotFound
	}
	delete(m.leads, id)
	return nil
}

func (m *mockRepository) ListUnassigned(ctx context.Context, tenantID uuid.UUID) ([]Lead, error) {
	var out []Lead
	for _, lead := range m.leads {
		if lead.TenantID == tenantID && lead.OwnerID == nil && !lead.Stage.Terminal() {
			out = append(out, *lead)
		}
	}
	return out, nil
}

func (m *mockRepository) ListActiveCorretores(ctx context.Context, tenantID, teamID uuid.UUID) ([]uuid.UUID, error) {
	return m.corretores, nil
}

func (m *mockRepository) Assign(ctx context.Context, tenantID, leadID, ownerID, teamID uuid.UUID) error {
	lead, ok := m.leads[leadID]
	if !ok || lead.TenantID != tenantID {
		return shared.ErrNotFound
	}
	owner := ownerID
	team := teamID
	lead.OwnerID = &owner
	lead.TeamID = &team
	m.assignments = append(m.assignments, ownerID)
	return nil
}

type mockAudit struct {
	records []shared.AuditLog
}

func (m *mockAudit) Record(ctx context.Context, log shared.AuditLog) error {
	m.records = append(m.records, log)
	return nil
}

type mockDistributor struct {
	tenantIDs []uuid.UUID
	teamIDs   []uuid.UUID
	err       error
}

func (m *mockDistributor) EnqueueLeadDistribution(ctx context.Context, tenantID, teamID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.tenantIDs = append(m.tenantIDs, tenantID)
	m.teamIDs = append(m.teamIDs, teamID)
	return nil
}

func adminPrincipal(tenantID uuid.UUID) *rbac.Principal {
	return &rbac.Principal{ID: uuid.New(), Role: rbac.RoleAdmin, TenantID: &tenantID}
}

func TestCreateAsCorretorOwnsLead(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	tenantID := uuid.New()
	teamID := uuid.New()
	p := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleCorretor, TenantID: &tenantID, TeamID: &teamID}

	lead, err := svc.Create(context.Background(), p, CreateInput{Name: "Maria Souza", Phone: "11999990000"})
	require.NoError(t, err)
	require.NotNil(t, lead.OwnerID)
	assert.Equal(t, p.ID, *lead.OwnerID)
	assert.Equal(t, teamID, *lead.TeamID)
	assert.Equal(t, StageNovo, lead.Stage)
}

func TestCreateAsAdminLeavesLeadUnassigned(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	tenantID := uuid.New()

	lead, err := svc.Create(context.Background(), adminPrincipal(tenantID), CreateInput{Name: "João Lima"})
	require.NoError(t, err)
	assert.Nil(t, lead.OwnerID)
	assert.Equal(t, tenantID, lead.TenantID)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	_, err := svc.Create(context.Background(), adminPrincipal(uuid.New()), CreateInput{Name: "   "})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetOutsideScopeIsNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	tenantA := uuid.New()
	tenantB := uuid.New()

	lead, err := svc.Create(context.Background(), adminPrincipal(tenantA), CreateInput{Name: "Ana"})
	require.NoError(t, err)

	scopeB := rbac.DeriveScope(adminPrincipal(tenantB))
	_, err = svc.Get(context.Background(), scopeB, lead.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMoveRejectsTerminalLeads(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	p := adminPrincipal(uuid.New())
	scope := rbac.DeriveScope(p)

	lead, err := svc.Create(context.Background(), p, CreateInput{Name: "Pedro"})
	require.NoError(t, err)

	_, err = svc.Move(context.Background(), scope, lead.ID, StageFechado)
	require.NoError(t, err)

	_, err = svc.Move(context.Background(), scope, lead.ID, StageContato)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestMoveRejectsUnknownStage(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	_, err := svc.Move(context.Background(), rbac.AccessScope{Unrestricted: true}, uuid.New(), Stage("GANHO"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteRecordsAudit(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit, nil)
	p := adminPrincipal(uuid.New())
	scope := rbac.DeriveScope(p)

	lead, err := svc.Create(context.Background(), p, CreateInput{Name: "Carla"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p, scope, lead.ID))
	require.Len(t, audit.records, 1)
	assert.Equal(t, "lead.delete", audit.records[0].Action)
	assert.Equal(t, lead.ID.String(), audit.records[0].EntityID)
}

func TestDistributeGestorForeignTeamDenied(t *testing.T) {
	dist := &mockDistributor{}
	svc := NewService(newMockRepository(), nil, dist)
	tenantID := uuid.New()
	ownTeam := uuid.New()
	p := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleGestor, TenantID: &tenantID, TeamID: &ownTeam}

	err := svc.Distribute(context.Background(), p, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, dist.teamIDs)

	require.NoError(t, svc.Distribute(context.Background(), p, ownTeam))
	require.Len(t, dist.teamIDs, 1)
	assert.Equal(t, ownTeam, dist.teamIDs[0])
	assert.Equal(t, tenantID, dist.tenantIDs[0])
}

func TestRunDistributionRoundRobin(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	tenantID := uuid.New()
	teamID := uuid.New()
	p := adminPrincipal(tenantID)

	corretorA := uuid.New()
	corretorB := uuid.New()
	repo.corretores = []uuid.UUID{corretorA, corretorB}

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), p, CreateInput{Name: "Lead"})
		require.NoError(t, err)
	}

	assigned, err := svc.RunDistribution(context.Background(), tenantID, teamID)
	require.NoError(t, err)
	assert.Equal(t, 5, assigned)
	require.Len(t, repo.assignments, 5)

	counts := map[uuid.UUID]int{}
	for _, owner := range repo.assignments {
		counts[owner]++
	}
	assert.Equal(t, 3, counts[corretorA])
	assert.Equal(t, 2, counts[corretorB])

	// Nothing left to distribute.
	assigned, err = svc.RunDistribution(context.Background(), tenantID, teamID)
	require.NoError(t, err)
	assert.Equal(t, 0, assigned)
}

func TestRunDistributionNoCorretoresIsNoop(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	tenantID := uuid.New()
	_, err := svc.Create(context.Background(), adminPrincipal(tenantID), CreateInput{Name: "Lead"})
	require.NoError(t, err)

	assigned, err := svc.RunDistribution(context.Background(), tenantID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, assigned)
}

func TestListPropagatesRepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.listErr = errors.New("boom")
	svc := NewService(repo, nil, nil)

	_, _, err := svc.List(context.Background(), rbac.AccessScope{Unrestricted: true}, ListFilter{})
	assert.Error(t, err)
}
