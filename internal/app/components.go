package app

import (
	"github.com/stacklok/event-registration-server/internal/auth"
	"github.com/stacklok/event-registration-server/internal/service"
	"github.com/stacklok/event-registration-server/internal/store"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Store persists registrations
	Store store.Store

	// RegistrationService provides the registration business logic
	RegistrationService service.RegistrationService

	// Authenticator checks admin credentials
	Authenticator *auth.Authenticator

	// Sessions issues and resolves admin sessions
	Sessions *auth.SessionManager
}
