// Package admin serves operator endpoints behind the admin token.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"notaryfix/internal/jurisdiction"
	"notaryfix/internal/jurisdiction/store"
	dErrors "notaryfix/pkg/domain-errors"
	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/platform/audit/publisher"
	"notaryfix/pkg/platform/httputil"
	"notaryfix/pkg/requestcontext"
)

// Reloader reloads the jurisdiction dataset on demand.
type Reloader interface {
	ReloadFresh(ctx context.Context) (*jurisdiction.ReloadResult, error)
}

// SnapshotReader exposes the installed dataset.
type SnapshotReader interface {
	Current() *store.Snapshot
	LoadedAt() time.Time
}

// AuditLister reads audit events for a subject.
type AuditLister interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// Handler serves operator endpoints. Mount it behind
// admin.RequireAdminToken.
type Handler struct {
	reloader Reloader
	snapshot SnapshotReader
	audit    AuditLister
	logger   *slog.Logger
}

// New constructs an admin handler. auditLister may be nil.
func New(reloader Reloader, snapshot SnapshotReader, auditLister AuditLister, logger *slog.Logger) *Handler {
	return &Handler{
		reloader: reloader,
		snapshot: snapshot,
		audit:    auditLister,
		logger:   logger,
	}
}

// Register mounts admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/dataset/reload", h.HandleReload)
	r.Get("/admin/dataset", h.HandleStatus)
	r.Get("/admin/audit", h.HandleAudit)
}

// HandleReload handles POST /admin/dataset/reload.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.reloader.ReloadFresh(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "admin dataset reload failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleStatus handles GET /admin/dataset.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot.Current()
	resp := DatasetStatusResponse{
		Counts: snap.Dataset().Counts(),
		States: []string{},
	}
	if at := h.snapshot.LoadedAt(); !at.IsZero() {
		resp.LoadedAt = &at
	}
	for _, code := range snap.States() {
		resp.States = append(resp.States, code.String())
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleAudit handles GET /admin/audit?subject=...
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := strings.TrimSpace(r.URL.Query().Get("subject"))
	if subject == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "subject is required"))
		return
	}
	if h.audit == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audit log is not readable"))
		return
	}

	events, err := h.audit.List(ctx, subject)
	if err != nil {
		if errors.Is(err, publisher.ErrNoLister) {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit log is not readable"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, AuditListResponse{Subject: subject, Events: events, Total: len(events)})
}
