package documents

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

// Handler manages document endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers document routes. Issuing is open to every
// agency role; the scope already restricts which leads qualify.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{documentID}", h.get)
	r.Get("/{documentID}/html", h.html)
	r.Post("/", h.issue)
	r.Get("/lead/{leadID}", h.listByLead)
}

func (h *Handler) listByLead(w http.ResponseWriter, r *http.Request) {
	leadID, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	docs, err := h.service.ListByLead(r.Context(), rbac.ScopeFromContext(r.Context()), leadID)
	if err != nil {
		h.logger.Error("list documents", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.service.Get(r.Context(), rbac.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// html serves the stored rendering directly, for printing.
func (h *Handler) html(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.service.Get(r.Context(), rbac.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, mapErr(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.HTML))
}

type issueRequest struct {
	LeadID        uuid.UUID `json:"leadId" validate:"required"`
	PropertyID    uuid.UUID `json:"propertyId" validate:"required"`
	Kind          string    `json:"kind" validate:"required"`
	BrokerName    string    `json:"brokerName" validate:"required,min=2"`
	PriceCentavos int64     `json:"priceCentavos" validate:"gte=0"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ctx := r.Context()
	doc, err := h.service.Issue(ctx, rbac.PrincipalFromContext(ctx), rbac.ScopeFromContext(ctx), IssueInput{
		LeadID:        req.LeadID,
		PropertyID:    req.PropertyID,
		Kind:          Kind(req.Kind),
		BrokerName:    req.BrokerName,
		PriceCentavos: req.PriceCentavos,
	})
	if err != nil {
		h.logger.Error("issue document", slog.Any("error", err))
		httpx.RespondError(w, mapErr(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
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
