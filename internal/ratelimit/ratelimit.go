// Package ratelimit throttles public API calls per client IP.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"notaryfix/internal/ratelimit/metrics"
	"notaryfix/internal/ratelimit/models"
	dErrors "notaryfix/pkg/domain-errors"
	"notaryfix/pkg/platform/httputil"
	"notaryfix/pkg/requestcontext"
)

// Store counts requests per key within a window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Limiter applies one limit to every request it sees.
type Limiter struct {
	store   Store
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Limiter)

func WithLogger(l *slog.Logger) Option {
	return func(lim *Limiter) { lim.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(lim *Limiter) { lim.metrics = m }
}

// New builds a Limiter allowing limit requests per window for each client.
func New(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{store: store, limit: limit, window: window, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Middleware enforces the limit keyed on the client IP. Store failures let
// the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		result, err := l.store.Allow(ctx, "ip:"+requestcontext.ClientIP(ctx), l.limit, l.window)
		if err != nil {
			l.metrics.IncrementCheck("error")
			l.logger.WarnContext(ctx, "rate limit check failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		addHeaders(w, result)
		if !result.Allowed {
			l.metrics.IncrementCheck("limited")
			retry := math.Ceil(time.Until(result.ResetAt).Seconds())
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Max(retry, 1))))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
			return
		}
		l.metrics.IncrementCheck("allowed")
		next.ServeHTTP(w, r)
	})
}

func addHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
