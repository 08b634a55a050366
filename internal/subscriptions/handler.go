package subscriptions

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/imobiflow/imobiflow/internal/platform/httpx"
	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

func mapErr(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return httpx.ErrNotFound
	case errors.Is(err, shared.ErrValidation):
		return httpx.ErrValidation
	case errors.Is(err, shared.ErrAlreadyExists):
		return httpx.ErrDuplicate
	}
	return err
}

// Handler wires subscription endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountMeRoutes registers the gate endpoint under /me.
func (h *Handler) MountMeRoutes(r chi.Router) {
	r.Get("/subscription", h.myGate)
}

// MountRoutes registers snapshot management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin, rbac.RoleAutonomo))
		r.Get("/{agencyID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleSuperAdmin))
		r.Put("/{agencyID}", h.update)
	})
}

func (h *Handler) myGate(w http.ResponseWriter, r *http.Request) {
	p := rbac.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if p.TenantID == nil {
		// SUPER_ADMIN has no agency and no gating.
		httpx.JSON(w, http.StatusOK, Gate{Alert: AlertNone})
		return
	}
	gate, err := h.service.GateFor(r.Context(), *p.TenantID)
	if err != nil {
		h.logger.Error("evaluate subscription gate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, gate)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, err := uuid.Parse(chi.URLParam(r, "agencyID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	snapshot, err := h.service.Get(r.Context(), rbac.ScopeFromContext(r.Context()), agencyID)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, snapshot)
}

type updateRequest struct {
	Status         Status     `json:"status" validate:"required"`
	TrialEndsAt    *time.Time `json:"trialEndsAt"`
	LifetimeAccess bool       `json:"lifetimeAccess"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	agencyID, err := uuid.Parse(chi.URLParam(r, "agencyID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	snapshot, err := h.service.Update(r.Context(), agencyID, req.Status, req.TrialEndsAt, req.LifetimeAccess)
	if err != nil {
		h.logger.Error("update subscription", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, snapshot)
}
