package agencies

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

// Handler manages agency endpoints.
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

// MountRoutes registers agency routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireRole(rbac.RoleSuperAdmin)).Get("/", h.list)
	r.With(h.guard.RequireRole(rbac.RoleSuperAdmin)).Post("/", h.create)
	r.Get("/{agencyID}", h.get)
	r.With(h.guard.RequireRole(rbac.RoleAdmin, rbac.RoleAutonomo)).Put("/{agencyID}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromQuery(r.URL.Query())
	agencies, total, err := h.service.List(r.Context(), shared.Pagination{Page: page, PerPage: perPage})
	if err != nil {
		h.logger.Error("list agencies", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	if agencies == nil {
		agencies = []Agency{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"agencies": agencies, "pagination": shared.NewPagination(page, perPage, total)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "agencyID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	agency, err := h.service.Get(r.Context(), rbac.PrincipalFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, agency)
}

type agencyRequest struct {
	Name      string `json:"name" validate:"required,min=2"`
	TradeName string `json:"tradeName"`
	CNPJ      string `json:"cnpj"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	State     string `json:"state" validate:"omitempty,len=2"`
	IsActive  *bool  `json:"isActive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req agencyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	agency, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), Input{
		Name: req.Name, TradeName: req.TradeName, CNPJ: req.CNPJ, Phone: req.Phone, City: req.City, State: req.State,
	})
	if err != nil {
		h.logger.Error("create agency", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, agency)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "agencyID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req agencyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	agency, err := h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), id, Input{
		Name: req.Name, TradeName: req.TradeName, CNPJ: req.CNPJ, Phone: req.Phone, City: req.City, State: req.State,
	}, req.IsActive)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, agency)
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
