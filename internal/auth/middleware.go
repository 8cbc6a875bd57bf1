package auth

import (
	"context"
	"log/slog"
	"net/http"
)

type sessionContextKey struct{}

// WithSession returns a copy of ctx carrying sess
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the admin session stored by RequireAdmin
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*Session)
	return sess, ok && sess != nil
}

// RequireAdmin lets requests with a valid admin session through and
// redirects the rest to loginPath with 302 Found.
func RequireAdmin(sessions *SessionManager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.FromRequest(r)
			if err != nil {
				slog.DebugContext(r.Context(), "Admin session required", "path", r.URL.Path, "error", err)
				if _, cookieErr := r.Cookie(sessions.CookieName()); cookieErr == nil {
					sessions.ClearCookie(w)
				}
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
