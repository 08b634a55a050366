package properties

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/imobiflow/imobiflow/internal/platform/httpx"
	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
)

// Handler manages property endpoints.
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

// MountRoutes registers property routes. Any agency member may create
// and edit listings; deletion needs GESTOR or above.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{propertyID}", h.get)
	r.Post("/", h.create)
	r.Put("/{propertyID}", h.update)
	r.With(h.guard.RequireMinRole(rbac.RoleGestor)).Delete("/{propertyID}", h.delete)
}

func parseFilter(r *http.Request) ListFilter {
	q := r.URL.Query()
	filter := ListFilter{
		Type: PropertyType(q.Get("type")),
		Kind: TransactionKind(q.Get("kind")),
		City: q.Get("city"),
	}
	if v, err := strconv.ParseInt(q.Get("minPrice"), 10, 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseInt(q.Get("maxPrice"), 10, 64); err == nil {
		filter.MaxPrice = v
	}
	if q.Get("published") == "true" {
		filter.PublishedOnly = true
	}
	return filter
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromQuery(r.URL.Query())
	properties, total, err := h.service.List(r.Context(), rbac.ScopeFromContext(r.Context()), parseFilter(r), shared.Pagination{Page: page, PerPage: perPage})
	if err != nil {
		h.logger.Error("list properties", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	if properties == nil {
		properties = []Property{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"properties": properties, "pagination": shared.NewPagination(page, perPage, total)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	property, err := h.service.Get(r.Context(), rbac.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, property)
}

type propertyRequest struct {
	Title         string  `json:"title" validate:"required,min=3"`
	Description   string  `json:"description"`
	Type          string  `json:"type" validate:"required"`
	Kind          string  `json:"kind" validate:"required"`
	PriceCentavos int64   `json:"priceCentavos" validate:"gte=0"`
	Bedrooms      int     `json:"bedrooms" validate:"gte=0"`
	AreaM2        float64 `json:"areaM2" validate:"gte=0"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state" validate:"omitempty,len=2"`
	IsPublished   bool    `json:"isPublished"`
}

func (req propertyRequest) toInput() Input {
	return Input{
		Title:         req.Title,
		Description:   req.Description,
		Type:          PropertyType(req.Type),
		Kind:          TransactionKind(req.Kind),
		PriceCentavos: req.PriceCentavos,
		Bedrooms:      req.Bedrooms,
		AreaM2:        req.AreaM2,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		IsPublished:   req.IsPublished,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	property, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), req.toInput())
	if err != nil {
		h.logger.Error("create property", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, property)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req propertyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ctx := r.Context()
	property, err := h.service.Update(ctx, rbac.PrincipalFromContext(ctx), rbac.ScopeFromContext(ctx), id, req.toInput())
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, property)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "propertyID"))
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
