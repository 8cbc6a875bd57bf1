package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultSessionTTL is how long a session stays valid
	DefaultSessionTTL = 12 * time.Hour

	// DefaultCookieName is the name of the session cookie
	DefaultCookieName = "session"

	sessionIssuer    = "registration-api"
	minSecretLength  = 32
	cleanupIntervals = 4
)

// Session is an authenticated admin session
type Session struct {
	ID        string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionManager issues and resolves admin sessions.
//
// A session is a signed HS256 token in a cookie whose ID must also be present
// in the in-memory registry, so Destroy and a restart both end it.
type SessionManager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
	sessions   *gocache.Cache
}

// SessionOption configures a SessionManager
type SessionOption func(*SessionManager)

// WithTTL sets the session lifetime
func WithTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithCookieName sets the session cookie name
func WithCookieName(name string) SessionOption {
	return func(m *SessionManager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithSecureCookie marks the cookie as HTTPS-only
func WithSecureCookie(secure bool) SessionOption {
	return func(m *SessionManager) {
		m.secure = secure
	}
}

// WithClock overrides the clock used for token timestamps
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewSessionManager creates a session manager signing tokens with secret
func NewSessionManager(secret []byte, opts ...SessionOption) (*SessionManager, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minSecretLength)
	}

	m := &SessionManager{
		secret:     secret,
		ttl:        DefaultSessionTTL,
		cookieName: DefaultCookieName,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sessions = gocache.New(m.ttl, m.ttl/cleanupIntervals)

	return m, nil
}

// GenerateSecret returns a random signing key. Sessions signed with it do not
// survive a restart.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, minSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}

// CookieName returns the name of the session cookie
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Create starts a session for email and returns it with its signed token
func (m *SessionManager) Create(email string) (*Session, string, error) {
	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   email,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	m.sessions.Set(sess.ID, sess, m.ttl)
	slog.Info("Admin session created", "session_id", sess.ID, "email", email)

	return sess, token, nil
}

// Lookup resolves a token to its live session
func (m *SessionManager) Lookup(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	cached, ok := m.sessions.Get(claims.ID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s is not active", ErrNoSession, claims.ID)
	}
	sess, ok := cached.(*Session)
	if !ok || sess.Email != claims.Subject {
		return nil, fmt.Errorf("%w: session %s does not match token", ErrNoSession, claims.ID)
	}

	return sess, nil
}

// FromRequest resolves the session carried by the request cookie
func (m *SessionManager) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	return m.Lookup(cookie.Value)
}

// Destroy ends the session with the given ID
func (m *SessionManager) Destroy(id string) {
	m.sessions.Delete(id)
	slog.Info("Admin session destroyed", "session_id", id)
}

// SetCookie writes the session cookie
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie from the client
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
