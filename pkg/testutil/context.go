package testutil

import (
	"net/http"
	"time"

	"notaryfix/pkg/requestcontext"
)

// WithPrincipal attaches a gate subject the way the principal middleware
// would for a bearer token.
func WithPrincipal(req *http.Request, userID, planTier, role string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.Subject{
		UserID:   userID,
		PlanTier: planTier,
		Role:     role,
	})
	return req.WithContext(ctx)
}

// WithRequestTime pins the request clock so confidence scores are stable.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
