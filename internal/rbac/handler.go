package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imobiflow/imobiflow/internal/platform/httpx"
)

// MeHandler exposes the current principal and its capability projection so
// the web client can gate rendering without a second round-trip.
type MeHandler struct {
	logger *slog.Logger
}

// NewMeHandler builds a MeHandler instance.
func NewMeHandler(logger *slog.Logger) *MeHandler {
	return &MeHandler{logger: logger}
}

// MountRoutes registers the /me routes. Callers mount these inside an
// authenticated group.
func (h *MeHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.me)
	r.Get("/permissions", h.permissions)
}

type meResponse struct {
	Principal    *Principal    `json:"principal"`
	Capabilities CapabilitySet `json:"capabilities"`
}

func (h *MeHandler) me(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{Principal: p, Capabilities: NewCapabilitySet(p.Role)})
}

func (h *MeHandler) permissions(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, NewCapabilitySet(p.Role))
}
