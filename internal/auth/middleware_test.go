package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	m := newTestSessionManager(t)
	sess, token, err := m.Create("Admin@gdg")
	require.NoError(t, err)

	var seen *Session
	protected := RequireAdmin(m, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		seen = got
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no cookie redirects to login", func(t *testing.T) {
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
		assert.Empty(t, rr.Result().Cookies())
	})

	t.Run("stale cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download-csv", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "stale"})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusFound, rr.Code)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Negative(t, cookies[0].MaxAge)
	})

	t.Run("valid session passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/registrations", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seen)
		assert.Equal(t, sess.ID, seen.ID)
	})
}

func TestSessionFromContext_Empty(t *testing.T) {
	t.Parallel()

	_, ok := SessionFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
