package users

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

// Handler manages user management endpoints.
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

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{userID}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleGestor, rbac.RoleAdmin))
		r.Post("/", h.create)
		r.Put("/{userID}", h.update)
		r.Delete("/{userID}", h.deactivate)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context(), rbac.ScopeFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	user, err := h.service.Get(r.Context(), rbac.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type createRequest struct {
	AgencyID *uuid.UUID `json:"agencyId"`
	Name     string     `json:"name" validate:"required,min=2"`
	Email    string     `json:"email" validate:"required,email"`
	Role     rbac.Role  `json:"role" validate:"required"`
	TeamID   *uuid.UUID `json:"teamId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actor := rbac.PrincipalFromContext(r.Context())
	agencyID, ok := targetAgency(actor, req.AgencyID)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	user, err := h.service.Create(r.Context(), actor, agencyID, CreateInput{
		Name: req.Name, Email: req.Email, Role: req.Role, TeamID: req.TeamID,
	})
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

type updateRequest struct {
	Name     string     `json:"name" validate:"required,min=2"`
	Role     rbac.Role  `json:"role" validate:"required"`
	TeamID   *uuid.UUID `json:"teamId"`
	IsActive bool       `json:"isActive"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ctx := r.Context()
	user, err := h.service.Update(ctx, rbac.PrincipalFromContext(ctx), rbac.ScopeFromContext(ctx), id, UpdateInput{
		Name: req.Name, Role: req.Role, TeamID: req.TeamID, IsActive: req.IsActive,
	})
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ctx := r.Context()
	if err := h.service.Deactivate(ctx, rbac.PrincipalFromContext(ctx), rbac.ScopeFromContext(ctx), id); err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// targetAgency resolves which agency a create targets: SUPER_ADMIN must
// name one explicitly, everyone else is pinned to their own.
func targetAgency(actor *rbac.Principal, requested *uuid.UUID) (uuid.UUID, bool) {
	if actor == nil {
		return uuid.Nil, false
	}
	if actor.Role == rbac.RoleSuperAdmin {
		if requested == nil {
			return uuid.Nil, false
		}
		return *requested, true
	}
	if actor.TenantID == nil {
		return uuid.Nil, false
	}
	return *actor.TenantID, true
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
