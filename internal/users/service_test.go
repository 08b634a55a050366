package users

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
	users map[uuid.UUID]*User
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepository) visible(scope rbac.AccessScope, u *User) bool {
	id := u.ID
	return scope.Allows(u.AgencyID, u.TeamID, &id)
}

func (m *mockRepository) List(ctx context.Context, scope rbac.AccessScope) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if m.visible(scope, u) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, scope rbac.AccessScope, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok || !m.visible(scope, u) {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, user User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return shared.ErrAlreadyExists
		}
	}
	m.users[user.ID] = &user
	return nil
}

func (m *mockRepository) Update(ctx context.Context, user User) error {
	if _, ok := m.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	m.users[user.ID] = &user
	return nil
}

type mockAudit struct {
	records []shared.AuditLog
}

func (m *mockAudit) Record(ctx context.Context, log shared.AuditLog) error {
	m.records = append(m.records, log)
	return nil
}

func admin(tenantID uuid.UUID) *rbac.Principal {
	return &rbac.Principal{ID: uuid.New(), Role: rbac.RoleAdmin, TenantID: &tenantID}
}

func TestCreateUser(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit)
	tenantID := uuid.New()

	user, err := svc.Create(context.Background(), admin(tenantID), tenantID, CreateInput{
		Name: "Rafael Costa", Email: "Rafael@Agencia.com.br", Role: rbac.RoleCorretor,
	})
	require.NoError(t, err)
	assert.Equal(t, "rafael@agencia.com.br", user.Email)
	assert.True(t, user.IsActive)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "user.create", audit.records[0].Action)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	actor := admin(tenantID)

	_, err := svc.Create(context.Background(), actor, tenantID, CreateInput{
		Name: "A", Email: "dup@x.com", Role: rbac.RoleCorretor,
	})
	// Name too short is caught by the handler validator, not the service.
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), actor, tenantID, CreateInput{
		Name: "B", Email: "dup@x.com", Role: rbac.RoleCorretor,
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGrantCeiling(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	teamID := uuid.New()
	gestor := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleGestor, TenantID: &tenantID, TeamID: &teamID}

	// A gestor can create corretores.
	_, err := svc.Create(context.Background(), gestor, tenantID, CreateInput{
		Name: "Corretor", Email: "c@x.com", Role: rbac.RoleCorretor, TeamID: &teamID,
	})
	require.NoError(t, err)

	// But never peers or superiors.
	for _, role := range []rbac.Role{rbac.RoleGestor, rbac.RoleAutonomo, rbac.RoleAdmin} {
		_, err := svc.Create(context.Background(), gestor, tenantID, CreateInput{
			Name: "X", Email: "x@x.com", Role: role,
		})
		assert.ErrorIs(t, err, shared.ErrValidation, "role %s", role)
	}
}

func TestCreateSuperAdminRoleIsRejected(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	super := &rbac.Principal{ID: uuid.New(), Role: rbac.RoleSuperAdmin}

	_, err := svc.Create(context.Background(), super, uuid.New(), CreateInput{
		Name: "X", Email: "x@x.com", Role: rbac.RoleSuperAdmin,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateForForeignAgencyDenied(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	actor := admin(uuid.New())

	_, err := svc.Create(context.Background(), actor, uuid.New(), CreateInput{
		Name: "X", Email: "x@x.com", Role: rbac.RoleCorretor,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateCannotTouchHigherRankedUser(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	actor := admin(tenantID)

	// Seed an admin-ranked target directly.
	target := User{ID: uuid.New(), AgencyID: tenantID, Name: "Other Admin", Email: "o@x.com", Role: rbac.RoleAdmin, IsActive: true}
	repo.users[target.ID] = &target

	scope := rbac.DeriveScope(actor)
	_, err := svc.Update(context.Background(), actor, scope, target.ID, UpdateInput{
		Name: "Other Admin", Role: rbac.RoleCorretor, IsActive: true,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRoleChangeIsAudited(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit)
	tenantID := uuid.New()
	actor := admin(tenantID)

	user, err := svc.Create(context.Background(), actor, tenantID, CreateInput{
		Name: "Corretora", Email: "c@x.com", Role: rbac.RoleCorretor,
	})
	require.NoError(t, err)

	scope := rbac.DeriveScope(actor)
	_, err = svc.Update(context.Background(), actor, scope, user.ID, UpdateInput{
		Name: "Corretora", Role: rbac.RoleGestor, IsActive: true,
	})
	require.NoError(t, err)

	var actions []string
	for _, rec := range audit.records {
		actions = append(actions, rec.Action)
	}
	assert.Contains(t, actions, "user.role_change")
}

func TestDeactivate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()
	actor := admin(tenantID)

	user, err := svc.Create(context.Background(), actor, tenantID, CreateInput{
		Name: "Corretor", Email: "c@x.com", Role: rbac.RoleCorretor,
	})
	require.NoError(t, err)

	scope := rbac.DeriveScope(actor)
	require.NoError(t, svc.Deactivate(context.Background(), actor, scope, user.ID))
	assert.False(t, repo.users[user.ID].IsActive)
}

func TestCorretorSeesOnlyThemselves(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	tenantID := uuid.New()

	self := User{ID: uuid.New(), AgencyID: tenantID, Name: "Eu", Email: "eu@x.com", Role: rbac.RoleCorretor, IsActive: true}
	other := User{ID: uuid.New(), AgencyID: tenantID, Name: "Outro", Email: "outro@x.com", Role: rbac.RoleCorretor, IsActive: true}
	repo.users[self.ID] = &self
	repo.users[other.ID] = &other

	p := self.Principal()
	scope := rbac.DeriveScope(&p)
	users, err := svc.List(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, self.ID, users[0].ID)
}
