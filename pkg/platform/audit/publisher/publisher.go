// Package publisher fans audit events out to a Store, synchronously or
// through a bounded async buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "notaryfix/pkg/platform/audit"
	"notaryfix/pkg/platform/audit/publishers/ops"
	"notaryfix/pkg/platform/audit/worker"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
	ErrNoLister   = audit.ErrNoLister
)

// Publisher emits audit events. In async mode Emit never blocks on the
// store; a full buffer drops the event and returns ErrBufferFull.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	sampler *ops.Sampler
	breaker *ops.CircuitBreaker
	metrics *ops.Metrics

	bufferSize int
	inbox      chan audit.Event
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of the given size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithSampler samples operations-category events. Compliance and security
// events are never sampled.
func WithSampler(s *ops.Sampler) Option {
	return func(p *Publisher) {
		p.sampler = s
	}
}

// WithCircuitBreaker skips the store while it is failing.
func WithCircuitBreaker(cb *ops.CircuitBreaker) Option {
	return func(p *Publisher) {
		p.breaker = cb
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *ops.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher creates a publisher over store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(breakerStore{p}, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records an event. The timestamp is set when missing and the category
// is always derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if event.Category == audit.CategoryOperations && p.sampler != nil && !p.sampler.ShouldSample(event.Action) {
		p.metrics.IncSampled()
		return nil
	}

	if p.inbox == nil {
		return breakerStore{p}.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"request_id", event.RequestID,
		)
		p.metrics.IncDropped()
		return ErrBufferFull
	}
}

// List returns events for subject when the store supports reads.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	lister, ok := p.store.(audit.Lister)
	if !ok {
		return nil, ErrNoLister
	}
	return lister.ListBySubject(ctx, subject)
}

// Close stops accepting events and, in async mode, drains the buffer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
	return nil
}

// breakerStore applies the circuit breaker and metrics around the store.
type breakerStore struct{ p *Publisher }

func (b breakerStore) Append(ctx context.Context, event audit.Event) error {
	p := b.p
	if p.breaker != nil && !p.breaker.Allow() {
		p.metrics.IncCircuitBreakerDropped()
		return nil
	}
	if err := p.store.Append(ctx, event); err != nil {
		if p.breaker != nil {
			p.breaker.RecordFailure()
			p.metrics.SetCircuitBreakerState(p.breaker.IsOpen())
		}
		p.metrics.IncPersistFailures()
		return err
	}
	if p.breaker != nil {
		p.breaker.RecordSuccess()
		p.metrics.SetCircuitBreakerState(false)
	}
	p.metrics.IncTracked()
	return nil
}
