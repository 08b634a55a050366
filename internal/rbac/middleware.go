package rbac

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Middleware wires the route guards for HTTP handlers.
type Middleware struct {
	Logger  *slog.Logger
	Denials *prometheus.CounterVec
}

// RequirePrincipal rejects unauthenticated requests with 401.
func (m Middleware) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			m.deny(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithAccessScope derives the access scope from the request's principal and
// attaches it to the context. It is not an authorization decision and must
// run on every authenticated route group: handlers that skip applying the
// attached scope open a tenant-isolation hole. A missing principal attaches
// the deny-all scope.
func (m Middleware) WithAccessScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := DeriveScope(PrincipalFromContext(r.Context()))
		next.ServeHTTP(w, r.WithContext(ContextWithScope(r.Context(), scope)))
	})
}

// RequireRole passes requests whose principal's role is in the allow-list.
// SUPER_ADMIN always bypasses the list. Absent principal is 401, role
// mismatch is 403.
func (m Middleware) RequireRole(allowed ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				m.deny(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if p.Role == RoleSuperAdmin || p.Role.in(allowed...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, http.StatusForbidden, "Forbidden")
		})
	}
}

// RequireMinRole passes requests whose principal ranks at least as high as
// min in the canonical hierarchy.
func (m Middleware) RequireMinRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				m.deny(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !p.Role.AtLeast(min) {
				m.deny(w, r, http.StatusForbidden, "Forbidden: insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, status int, message string) {
	if m.Logger != nil {
		m.Logger.Warn("request denied",
			slog.Int("status", status),
			slog.String("path", r.URL.Path))
	}
	if m.Denials != nil {
		reason := "forbidden"
		if status == http.StatusUnauthorized {
			reason = "unauthorized"
		}
		m.Denials.WithLabelValues(reason).Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
