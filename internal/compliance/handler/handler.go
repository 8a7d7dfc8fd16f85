package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"notaryfix/internal/compliance"
	"notaryfix/pkg/platform/httputil"
	"notaryfix/pkg/requestcontext"
)

// Service defines the compliance operations the handler needs.
type Service interface {
	Evaluate(ctx context.Context, req compliance.Request) (*compliance.Report, error)
	Guidance(ctx context.Context, stateCode string) (*compliance.Guidance, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service      Service
	logger       *slog.Logger
	defaultState string
}

// New constructs a compliance handler. defaultState fills requests that omit
// state_code; it may be empty.
func New(service Service, logger *slog.Logger, defaultState string) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		defaultState: defaultState,
	}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/compliance/evaluate", h.HandleEvaluate)
	r.Get("/v1/jurisdictions/{stateCode}", h.HandleGuidance)
}

// HandleEvaluate handles POST /v1/compliance/evaluate.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	report, err := h.service.Evaluate(ctx, req.ToRequest(h.defaultState))
	if err != nil {
		h.logger.ErrorContext(ctx, "compliance evaluation failed",
			"request_id", requestID,
			"state_code", req.StateCode,
			"act_type", req.ActType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "compliance evaluated",
		"request_id", requestID,
		"evaluation_id", report.EvaluationID,
		"state_code", report.StateCode,
		"act_type", report.ActType,
		"findings", len(report.Findings),
		"grounded", report.Grounded,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleGuidance handles GET /v1/jurisdictions/{stateCode}.
func (h *Handler) HandleGuidance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stateCode := chi.URLParam(r, "stateCode")

	g, err := h.service.Guidance(ctx, stateCode)
	if err != nil {
		h.logger.WarnContext(ctx, "jurisdiction guidance unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"state_code", stateCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromGuidance(g))
}
