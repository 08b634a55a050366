package teams

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/imobiflow/imobiflow/internal/platform/httpx"
	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// Handler manages team endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validate: validator.New()}
}

// MountRoutes registers team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{teamID}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleGestor, rbac.RoleAdmin))
		r.Post("/", h.create)
		r.Put("/{teamID}", h.update)
		r.Delete("/{teamID}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.List(r.Context(), rbac.ScopeFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list teams", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	if teams == nil {
		teams = []Team{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"teams": teams})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	team, err := h.service.Get(r.Context(), rbac.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, team)
}

type teamRequest struct {
	Name     string     `json:"name" validate:"required,min=2"`
	GestorID *uuid.UUID `json:"gestorId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actor := rbac.PrincipalFromContext(r.Context())
	if actor == nil || actor.TenantID == nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	team, err := h.service.Create(r.Context(), actor, *actor.TenantID, Input{Name: req.Name, GestorID: req.GestorID})
	if err != nil {
		h.logger.Error("create team", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, team)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req teamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ctx := r.Context()
	team, err := h.service.Update(ctx, rbac.PrincipalFromContext(ctx), rbac.ScopeFromContext(ctx), id, Input{Name: req.Name, GestorID: req.GestorID})
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, team)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ctx := r.Context()
	if err := h.service.Delete(ctx, rbac.PrincipalFromContext(ctx), rbac.ScopeFromContext(ctx), id); err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

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
