// Package jurisdiction keeps the in-memory rule store in step with its
// backing source.
package jurisdiction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"notaryfix/internal/jurisdiction/metrics"
	"notaryfix/internal/jurisdiction/models"
	"notaryfix/internal/jurisdiction/source"
	"notaryfix/internal/jurisdiction/store"
	dErrors "notaryfix/pkg/domain-errors"
	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/platform/sentinel"
	"notaryfix/pkg/requestcontext"
)

const defaultDebounce = 250 * time.Millisecond

// AuditPublisher records reload outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ReloadResult describes an installed snapshot.
type ReloadResult struct {
	Source   string             `json:"source"`
	Counts   models.Counts      `json:"counts"`
	Skipped  []models.Rejection `json:"skipped,omitempty"`
	LoadedAt time.Time          `json:"loaded_at"`
}

// Refresher loads, validates and installs datasets. A failed load keeps the
// previous snapshot in place.
type Refresher struct {
	source    source.Source
	holder    *store.Holder
	interval  time.Duration
	watchPath string
	debounce  time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	tracer  trace.Tracer

	// serializes reloads so snapshots install in load order
	mu sync.Mutex
}

// Option configures the Refresher.
type Option func(*Refresher)

// WithInterval enables periodic reloads.
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) { r.interval = d }
}

// WithWatchPath reloads when the file at path changes. The parent directory
// is watched so editors that replace the file by rename are noticed.
func WithWatchPath(path string) Option {
	return func(r *Refresher) { r.watchPath = path }
}

// WithDebounce coalesces bursts of file events.
func WithDebounce(d time.Duration) Option {
	return func(r *Refresher) { r.debounce = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Refresher) { r.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Refresher) { r.metrics = m }
}

func WithAuditor(a AuditPublisher) Option {
	return func(r *Refresher) { r.auditor = a }
}

// NewRefresher creates a Refresher. A nil src leaves the holder empty and
// makes every reload fail with an unavailable error.
func NewRefresher(src source.Source, holder *store.Holder, opts ...Option) *Refresher {
	r := &Refresher{
		source:   src,
		holder:   holder,
		debounce: defaultDebounce,
		logger:   slog.Default(),
		tracer:   otel.Tracer("notaryfix/internal/jurisdiction"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reload loads the dataset and installs it.
func (r *Refresher) Reload(ctx context.Context) (*ReloadResult, error) {
	return r.reload(ctx, false)
}

// ReloadFresh drops any cached snapshot before loading.
func (r *Refresher) ReloadFresh(ctx context.Context) (*ReloadResult, error) {
	return r.reload(ctx, true)
}

func (r *Refresher) reload(ctx context.Context, fresh bool) (*ReloadResult, error) {
	if r.source == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "no dataset source configured")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.source.Name()
	ctx, span := r.tracer.Start(ctx, "jurisdiction.Reload", trace.WithAttributes(
		attribute.String("source", name),
		attribute.Bool("fresh", fresh),
	))
	defer span.End()
	start := time.Now()

	if inv, ok := r.source.(source.Invalidator); ok && fresh {
		if err := inv.Invalidate(ctx); err != nil {
			r.logger.WarnContext(ctx, "failed to invalidate dataset cache",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}

	raw, err := r.source.Load(ctx)
	if err != nil {
		r.metrics.ObserveReload(name, false, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		r.logger.ErrorContext(ctx, "dataset reload failed",
			"request_id", requestcontext.RequestID(ctx),
			"source", name,
			"error", err,
		)
		r.emit(ctx, audit.Event{Action: string(audit.EventDatasetReloadFailed), Subject: name, Reason: err.Error()})
		return nil, translate(err)
	}

	ds, rejected := models.Sanitize(raw)
	at := requestcontext.Now(ctx)
	r.holder.Replace(ds, at)

	counts := ds.Counts()
	r.metrics.ObserveReload(name, true, time.Since(start))
	r.metrics.SetRecords(counts.Rules, counts.FeeSchedules, counts.IDRequirements, at)
	for _, rej := range rejected {
		r.metrics.IncrementSkipped(rej.Kind)
		r.logger.WarnContext(ctx, "dataset record skipped",
			"request_id", requestcontext.RequestID(ctx),
			"source", name,
			"record", rej.String(),
		)
		r.emit(ctx, audit.Event{Action: string(audit.EventDatasetRecordSkip), Subject: name, Reason: rej.String()})
	}

	r.logger.InfoContext(ctx, "dataset reloaded",
		"request_id", requestcontext.RequestID(ctx),
		"source", name,
		"state_rules", counts.Rules,
		"fee_schedules", counts.FeeSchedules,
		"id_requirements", counts.IDRequirements,
		"skipped", len(rejected),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	r.emit(ctx, audit.Event{
		Action:  string(audit.EventDatasetReloaded),
		Subject: name,
		Reason: fmt.Sprintf("state_rules=%d fee_schedules=%d id_requirements=%d skipped=%d",
			counts.Rules, counts.FeeSchedules, counts.IDRequirements, len(rejected)),
	})

	return &ReloadResult{Source: name, Counts: counts, Skipped: rejected, LoadedAt: at}, nil
}

func (r *Refresher) emit(ctx context.Context, event audit.Event) {
	if r.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := r.auditor.Emit(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "failed to emit dataset audit event",
			"request_id", event.RequestID,
			"action", event.Action,
			"error", err,
		)
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrInvalidDataset):
		return dErrors.Wrap(err, dErrors.CodeValidation, "dataset document is invalid")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "dataset not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "dataset source unavailable")
	}
}

// Run reloads on the configured interval and on file changes until ctx is
// done. Background reload failures are logged and retried on the next tick.
func (r *Refresher) Run(ctx context.Context) error {
	var ticks <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if r.watchPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create dataset watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(r.watchPath)); err != nil {
			return fmt.Errorf("watch %s: %w", r.watchPath, err)
		}
		events, watchErrs = watcher.Events, watcher.Errors
		r.logger.InfoContext(ctx, "watching dataset file", "path", r.watchPath)
	}

	target := filepath.Clean(r.watchPath)
	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
			_, _ = r.Reload(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(r.debounce)
			} else {
				debounce.Reset(r.debounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			_, _ = r.Reload(ctx)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			r.logger.WarnContext(ctx, "dataset watcher error", "error", err)
		}
	}
}
