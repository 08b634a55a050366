package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithPrincipal(p *Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), p))
	}
	return req
}

func decodeError(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(RoleGestor, RoleAdmin)(okHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithPrincipal(&Principal{ID: uuid.New(), Role: RoleGestor}))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestRequireRoleSuperAdminBypassesAnyList(t *testing.T) {
	mw := Middleware{}
	// Empty allow-list: nothing qualifies except the bypass.
	handler := mw.RequireRole()(okHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithPrincipal(&Principal{ID: uuid.New(), Role: RoleSuperAdmin}))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for SUPER_ADMIN, got %d", res.Code)
	}
}

func TestRequireRoleDeniesUnlistedRole(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(RoleAdmin)(okHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithPrincipal(&Principal{ID: uuid.New(), Role: RoleCorretor}))
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	if got := decodeError(t, res); got != "Forbidden" {
		t.Fatalf("unexpected error body %q", got)
	}
}

func TestRequireRoleWithoutPrincipalIs401(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(RoleCorretor)(okHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithPrincipal(nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if got := decodeError(t, res); got != "Unauthorized" {
		t.Fatalf("unexpected error body %q", got)
	}
}

func TestRequireMinRole(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireMinRole(RoleGestor)(okHandler())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithPrincipal(&Principal{ID: uuid.New(), Role: RoleAutonomo}))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for AUTONOMO >= GESTOR, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithPrincipal(&Principal{ID: uuid.New(), Role: RoleCorretor}))
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for CORRETOR < GESTOR, got %d", res.Code)
	}
	if got := decodeError(t, res); got != "Forbidden: insufficient role" {
		t.Fatalf("unexpected error body %q", got)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithPrincipal(nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestWithAccessScopeAttachesScope(t *testing.T) {
	mw := Middleware{}
	tenantID := uuid.New()
	var captured AccessScope
	handler := mw.WithAccessScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = ScopeFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithPrincipal(&Principal{
		ID: uuid.New(), Role: RoleAdmin, TenantID: &tenantID,
	}))
	if captured.TenantID == nil || *captured.TenantID != tenantID {
		t.Fatalf("expected tenant scope, got %+v", captured)
	}
}

func TestWithAccessScopeAnonymousAttachesDenyAll(t *testing.T) {
	mw := Middleware{}
	var captured AccessScope
	captured.Unrestricted = true // ensure the handler actually overwrote it
	handler := mw.WithAccessScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = ScopeFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithPrincipal(nil))
	if !captured.DenyAll() {
		t.Fatalf("anonymous request must carry deny-all scope, got %+v", captured)
	}
}

func TestScopeFromContextMissingIsDenyAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if !ScopeFromContext(req.Context()).DenyAll() {
		t.Fatal("missing scope must read as deny-all")
	}
}
