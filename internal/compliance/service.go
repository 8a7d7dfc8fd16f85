package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"notaryfix/internal/compliance/metrics"
	"notaryfix/internal/compliance/ports"
	"notaryfix/internal/jurisdiction/models"
	"notaryfix/internal/jurisdiction/store"
	"notaryfix/pkg/domain"
	dErrors "notaryfix/pkg/domain-errors"
	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/requestcontext"
)

// Provider hands out the dataset to evaluate against. Implementations swap
// datasets atomically, so one evaluation always sees one snapshot.
type Provider interface {
	Current() Dataset
}

// HolderProvider adapts a jurisdiction store holder to Provider.
func HolderProvider(h *store.Holder) Provider {
	return holderProvider{h}
}

type holderProvider struct{ h *store.Holder }

func (p holderProvider) Current() Dataset { return p.h.Current() }

// Report is an evaluation plus the context callers render around it.
type Report struct {
	EvaluationID string
	StateCode    string
	ActType      string
	// Grounded is true when a published rule for the state backed the
	// evaluation.
	Grounded        bool
	Notice          string
	Findings        []Finding
	Summary         Summary
	SessionAdvisory *Finding
	EvaluatedAt     time.Time
}

// Guidance is the published data for one jurisdiction.
type Guidance struct {
	StateCode     string
	Rule          *models.JurisdictionRule
	FeeEntries    []models.FeeScheduleEntry
	IDRequirement *models.IDRequirement
	Confidence    Confidence
	Grounded      bool
	Notice        string
}

// Service wraps the pure evaluator with dataset access, audit, metrics and
// tracing.
type Service struct {
	provider Provider
	auditor  ports.AuditPort
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	newID    func() string
}

// Option configures the Service.
type Option func(*Service)

func WithAuditor(a ports.AuditPort) Option {
	return func(s *Service) { s.auditor = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithIDGenerator replaces the evaluation ID source (uuid by default).
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService builds a Service. A nil provider evaluates against built-in
// rules only.
func NewService(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		logger:   slog.Default(),
		tracer:   otel.Tracer("notaryfix/internal/compliance"),
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NoticeFor is shown when no published rule exists for a state.
func NoticeFor(state string) string {
	return fmt.Sprintf("No published dataset for %s; showing built-in guidance only.", state)
}

func (s *Service) dataset() Dataset {
	if s.provider == nil {
		return nil
	}
	return s.provider.Current()
}

// Evaluate runs every check for req against the current dataset. The clock
// comes from the request context so a request sees one instant.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "compliance.Evaluate", trace.WithAttributes(
		attribute.String("state_code", req.StateCode),
		attribute.String("act_type", req.ActType),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	ds := s.dataset()
	findings := Evaluate(req, ds, now)

	state := domain.NormalizeStateCode(req.StateCode)
	report := &Report{
		EvaluationID: s.newID(),
		StateCode:    state.String(),
		ActType:      req.ActType,
		Findings:     findings,
		Summary:      Summarize(findings),
		EvaluatedAt:  now,
	}
	if !state.IsZero() {
		report.Grounded = ds != nil && ds.FindActiveRule(state.String()) != nil
		if !report.Grounded {
			report.Notice = NoticeFor(state.String())
		}
	}
	if advisory, ok := SessionFeeAdvisory(req, ds, now); ok {
		report.SessionAdvisory = &advisory
		s.metrics.IncrementSessionAdvisory()
	}

	span.SetAttributes(
		attribute.Int("findings", len(findings)),
		attribute.Bool("grounded", report.Grounded),
	)
	s.metrics.IncrementEvaluation(req.Context.Caller, report.Grounded)
	for _, f := range findings {
		s.metrics.IncrementFinding(string(f.ID), string(f.Severity))
	}
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	s.emit(ctx, audit.Event{
		Action:    string(audit.EventComplianceEvaluated),
		StateCode: report.StateCode,
		ActType:   report.ActType,
		Decision:  highestOrNone(report.Summary),
		Reason:    report.EvaluationID,
	})
	return report, nil
}

// Guidance returns the published data for one state. A state with no
// published records is reported as not found, carrying the notice.
func (s *Service) Guidance(ctx context.Context, stateCode string) (*Guidance, error) {
	state, err := domain.ParseStateCode(stateCode)
	if err != nil {
		return nil, err
	}
	_, span := s.tracer.Start(ctx, "compliance.Guidance", trace.WithAttributes(
		attribute.String("state_code", state.String()),
	))
	defer span.End()

	g := &Guidance{StateCode: state.String(), Confidence: StaticConfidence()}
	if ds := s.dataset(); ds != nil {
		g.Rule = ds.FindActiveRule(state.String())
		g.FeeEntries = ds.FindFeeEntries(state.String(), "")
		g.IDRequirement = ds.FindIDRequirement(state.String())
	}
	if g.Rule != nil {
		g.Grounded = true
		g.Confidence = ScoreConfidence(g.Rule.UpdatedAt, g.Rule.PublishedAt, requestcontext.Now(ctx))
	} else {
		g.Notice = NoticeFor(state.String())
	}
	if g.Rule == nil && len(g.FeeEntries) == 0 && g.IDRequirement == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, g.Notice)
	}

	s.emit(ctx, audit.Event{
		Action:    string(audit.EventGuidanceViewed),
		StateCode: g.StateCode,
	})
	return g, nil
}

// emit records an audit event without failing the caller.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if p, ok := requestcontext.Principal(ctx); ok {
		event.Subject = p.UserID
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", event.RequestID,
			"action", event.Action,
			"error", err,
		)
	}
}

func highestOrNone(s Summary) string {
	if s.Highest == "" {
		return "none"
	}
	return string(s.Highest)
}
