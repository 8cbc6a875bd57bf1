// Package auth provides the admin gate of the registration server: a single
// static credential pair, signed session cookies and the middleware that
// protects admin routes.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when the submitted email or password
	// does not match the configured admin.
	ErrInvalidCredentials = errors.New("Invalid credentials. Please try again.") //nolint:staticcheck // shown to the user verbatim

	// ErrNoSession is returned when a request carries no valid admin session
	ErrNoSession = errors.New("no valid session")
)

// Authenticator checks admin credentials
type Authenticator struct {
	email    string
	password string
}

// NewAuthenticator creates an authenticator for the given credential pair
func NewAuthenticator(email, password string) (*Authenticator, error) {
	if email == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("admin password is required")
	}
	return &Authenticator{email: email, password: password}, nil
}

// Email returns the admin email
func (a *Authenticator) Email() string {
	return a.email
}

// Check compares email and password against the admin credentials.
// Both comparisons are exact and constant-time.
func (a *Authenticator) Check(email, password string) error {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	if emailOK&passwordOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
