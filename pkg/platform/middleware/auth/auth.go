package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "notaryfix/pkg/domain-errors"
	"notaryfix/pkg/platform/httputil"
	"notaryfix/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	UserID   string
	PlanTier string
	Role     string
}

// Principal attaches the request subject used by feature gates. A valid
// bearer token supplies user, plan and role; a request without one gets
// defaults. A present but invalid token is rejected with 401 so a bad token
// never silently downgrades to the defaults. validator may be nil, in which
// case Authorization headers are ignored.
func Principal(validator JWTValidator, defaults requestcontext.Subject, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			subject := defaults

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if ok && validator != nil {
				claims, err := validator.ValidateToken(strings.TrimSpace(token))
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
					return
				}
				subject = requestcontext.Subject{
					UserID:   claims.UserID,
					PlanTier: claims.PlanTier,
					Role:     claims.Role,
				}
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, subject)))
		})
	}
}
