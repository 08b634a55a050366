package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "imobiflow_session", time.Hour, false)
}

func TestIssueAndLoadByCookie(t *testing.T) {
	sm := newManager(t)
	tenantID := uuid.New()
	principal := rbac.Principal{ID: uuid.New(), Role: rbac.RoleGestor, TenantID: &tenantID}

	token, err := sm.Issue(context.Background(), principal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: token})

	loaded, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || loaded.ID != principal.ID || loaded.Role != principal.Role {
		t.Fatalf("unexpected principal %+v", loaded)
	}
	if loaded.TenantID == nil || *loaded.TenantID != tenantID {
		t.Fatalf("tenant id lost: %+v", loaded)
	}
}

func TestLoadByBearerHeader(t *testing.T) {
	sm := newManager(t)
	token, err := sm.Issue(context.Background(), rbac.Principal{ID: uuid.New(), Role: rbac.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/agencies", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	loaded, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || loaded.Role != rbac.RoleSuperAdmin {
		t.Fatalf("unexpected principal %+v", loaded)
	}
}

func TestLoadMissingTokenIsAnonymous(t *testing.T) {
	sm := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/leads", nil)

	loaded, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected anonymous, got %+v", loaded)
	}
}

func TestRevokedTokenIsAnonymous(t *testing.T) {
	sm := newManager(t)
	token, err := sm.Issue(context.Background(), rbac.Principal{ID: uuid.New(), Role: rbac.RoleCorretor})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := sm.Revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	loaded, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected anonymous after revoke, got %+v", loaded)
	}
}
