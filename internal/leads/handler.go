package leads

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

// Handler wires lead pipeline endpoints.
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

// MountRoutes registers lead routes. Reads need only the scope; writes are
// role-gated per the capability policy.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{leadID}", h.get)
	r.Post("/", h.create)
	r.Put("/{leadID}", h.update)
	r.Patch("/{leadID}/stage", h.move)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleGestor, rbac.RoleAdmin, rbac.RoleAutonomo))
		r.Delete("/{leadID}", h.remove)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleGestor, rbac.RoleAdmin))
		r.Post("/distribute", h.distribute)
	})
}

type listResponse struct {
	Leads      []Lead            `json:"leads"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromQuery(r.URL.Query())
	filter := ListFilter{
		Stage:   Stage(r.URL.Query().Get("stage")),
		Search:  r.URL.Query().Get("q"),
		Page:    page,
		PerPage: perPage,
	}
	leads, pagination, err := h.service.List(r.Context(), rbac.ScopeFromContext(r.Context()), filter)
	if err != nil {
		h.logger.Error("list leads", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	if leads == nil {
		leads = []Lead{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Leads: leads, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	lead, err := h.service.Get(r.Context(), rbac.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

type leadRequest struct {
	Name       string     `json:"name" validate:"required,min=2"`
	Email      string     `json:"email" validate:"omitempty,email"`
	Phone      string     `json:"phone" validate:"omitempty,min=8"`
	Source     string     `json:"source"`
	PropertyID *uuid.UUID `json:"propertyId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	lead, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), CreateInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Source: req.Source, PropertyID: req.PropertyID,
	})
	if err != nil {
		h.logger.Error("create lead", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req leadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	lead, err := h.service.Update(r.Context(), rbac.ScopeFromContext(r.Context()), id, CreateInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Source: req.Source, PropertyID: req.PropertyID,
	})
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

type moveRequest struct {
	Stage Stage `json:"stage" validate:"required"`
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req moveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	lead, err := h.service.Move(r.Context(), rbac.ScopeFromContext(r.Context()), id, req.Stage)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
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

type distributeRequest struct {
	TeamID uuid.UUID `json:"teamId" validate:"required"`
}

func (h *Handler) distribute(w http.ResponseWriter, r *http.Request) {
	var req distributeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.TeamID == uuid.Nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Distribute(r.Context(), rbac.PrincipalFromContext(r.Context()), req.TeamID); err != nil {
		h.logger.Error("distribute leads", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
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
