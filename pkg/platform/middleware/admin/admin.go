package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "notaryfix/pkg/domain-errors"
	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/platform/httputil"
	"notaryfix/pkg/requestcontext"
)

// HeaderAdminToken carries the operator token.
const HeaderAdminToken = "X-Admin-Token"

// AuditPublisher records failed admin authentication.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RequireAdminToken guards operator endpoints. expected is either the plain
// token or, when it starts with "$2", a bcrypt hash of it. An empty expected
// token disables the endpoints entirely. auditor may be nil.
func RequireAdminToken(expected string, auditor AuditPublisher, logger *slog.Logger) func(http.Handler) http.Handler {
	hashed := strings.HasPrefix(expected, "$2")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if expected == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin endpoints are disabled"))
				return
			}
			token := r.Header.Get(HeaderAdminToken)
			if token != "" && tokenMatches(expected, token, hashed) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := requestcontext.RequestID(ctx)
			logger.WarnContext(ctx, "admin token mismatch",
				"request_id", requestID,
				"client_ip", requestcontext.ClientIP(ctx),
			)
			if auditor != nil {
				if err := auditor.Emit(ctx, audit.Event{
					Action:    string(audit.EventAdminAuthFailed),
					Subject:   requestcontext.ClientIP(ctx),
					Reason:    r.URL.Path,
					RequestID: requestID,
				}); err != nil {
					logger.WarnContext(ctx, "failed to emit admin audit event",
						"request_id", requestID,
						"error", err,
					)
				}
			}
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
		})
	}
}

func tokenMatches(expected, token string, hashed bool) bool {
	if hashed {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(token)) == nil
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}
