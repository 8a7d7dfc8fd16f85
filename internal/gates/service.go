package gates

import (
	"context"
	"log/slog"

	"notaryfix/internal/gates/metrics"
	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/requestcontext"
)

// AuditPublisher emits gate audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service resolves the request principal and records gate outcomes.
type Service struct {
	evaluator *Evaluator
	defaults  Subject
	auditor   AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithDefaultSubject is used when the request carries no principal.
func WithDefaultSubject(s Subject) ServiceOption {
	return func(svc *Service) { svc.defaults = s }
}

func WithAuditPublisher(a AuditPublisher) ServiceOption {
	return func(svc *Service) { svc.auditor = a }
}

func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(svc *Service) { svc.logger = l }
}

func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(svc *Service) { svc.metrics = m }
}

// NewService wraps evaluator.
func NewService(evaluator *Evaluator, opts ...ServiceOption) *Service {
	svc := &Service{evaluator: evaluator, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// SubjectFrom returns the request principal, or the configured defaults.
func (s *Service) SubjectFrom(ctx context.Context) Subject {
	if p, ok := requestcontext.Principal(ctx); ok {
		return Subject{PlanTier: p.PlanTier, Role: p.Role}
	}
	return s.defaults
}

// Check evaluates one feature for the request principal.
func (s *Service) Check(ctx context.Context, featureKey string) Decision {
	d := s.evaluator.Evaluate(featureKey, s.SubjectFrom(ctx))
	s.record(ctx, d)
	return d
}

// CheckAll evaluates every feature for the request principal. List views
// record metrics only; single checks are audited.
func (s *Service) CheckAll(ctx context.Context) []Decision {
	decisions := s.evaluator.EvaluateAll(s.SubjectFrom(ctx))
	for _, d := range decisions {
		s.metrics.IncrementDecision(d.FeatureKey, outcome(d))
	}
	return decisions
}

func (s *Service) record(ctx context.Context, d Decision) {
	s.metrics.IncrementDecision(d.FeatureKey, outcome(d))
	if d.Bypassed {
		s.logger.WarnContext(ctx, "feature gate bypassed by admin role",
			"request_id", requestcontext.RequestID(ctx),
			"feature", d.FeatureKey,
			"plan", d.Plan,
		)
	}
	if s.auditor == nil {
		return
	}
	action := audit.EventGateAllowed
	if !d.Allowed {
		action = audit.EventGateDenied
	}
	event := audit.Event{
		Action:    string(action),
		Decision:  outcome(d),
		Reason:    d.FeatureKey,
		RequestID: requestcontext.RequestID(ctx),
	}
	if p, ok := requestcontext.Principal(ctx); ok {
		event.Subject = p.UserID
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit gate audit event",
			"request_id", event.RequestID,
			"feature", d.FeatureKey,
			"error", err,
		)
	}
}

func outcome(d Decision) string {
	switch {
	case d.Bypassed:
		return "bypassed"
	case d.Allowed:
		return "allowed"
	default:
		return "denied"
	}
}
