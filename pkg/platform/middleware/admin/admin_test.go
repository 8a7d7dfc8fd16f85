package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"notaryfix/pkg/platform/audit"
)

type recordingAuditor struct{ events []audit.Event }

func (r *recordingAuditor) Emit(_ context.Context, e audit.Event) error {
	r.events = append(r.events, e)
	return nil
}

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	serve := func(expected, token string, auditor AuditPublisher) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/admin/dataset/reload", nil)
		if token != "" {
			r.Header.Set(HeaderAdminToken, token)
		}
		RequireAdminToken(expected, auditor, logger)(ok).ServeHTTP(w, r)
		return w
	}

	t.Run("plain token", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("s3cret", "s3cret", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, serve("s3cret", "nope", nil).Code)
	})

	t.Run("bcrypt hash", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, serve(string(hash), "s3cret", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, serve(string(hash), "wrong", nil).Code)
	})

	t.Run("unset token disables endpoints", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve("", "", nil).Code)
	})

	t.Run("failure is audited", func(t *testing.T) {
		auditor := &recordingAuditor{}
		serve("s3cret", "", auditor)
		require.Len(t, auditor.events, 1)
		assert.Equal(t, string(audit.EventAdminAuthFailed), auditor.events[0].Action)
		assert.Equal(t, "/admin/dataset/reload", auditor.events[0].Reason)
	})
}
