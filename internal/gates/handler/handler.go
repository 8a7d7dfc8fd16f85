package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"notaryfix/internal/gates"
	dErrors "notaryfix/pkg/domain-errors"
	"notaryfix/pkg/platform/httputil"
	"notaryfix/pkg/requestcontext"
)

const maxFeatureKeyLength = 64

// Service defines the gate operations the handler needs.
type Service interface {
	Check(ctx context.Context, featureKey string) gates.Decision
	CheckAll(ctx context.Context) []gates.Decision
}

// Handler exposes feature gate decisions for the request principal.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a gate handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts gate endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/gates", h.HandleList)
	r.Get("/v1/gates/{featureKey}", h.HandleCheck)
}

// HandleList handles GET /v1/gates.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromDecisions(h.service.CheckAll(r.Context())))
}

// HandleCheck handles GET /v1/gates/{featureKey}.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := strings.TrimSpace(chi.URLParam(r, "featureKey"))
	if key == "" || len(key) > maxFeatureKeyLength {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "feature key must be 1 to 64 characters"))
		return
	}

	d := h.service.Check(ctx, key)
	if !d.Known {
		h.logger.InfoContext(ctx, "unknown feature key checked",
			"request_id", requestcontext.RequestID(ctx),
			"feature", key,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecision(d))
}
