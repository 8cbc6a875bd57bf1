// Package service provides the business logic of the registration server:
// intake, listing, export and statistics over a store.Store.
package service

import (
	"context"
	"errors"

	"github.com/stacklok/event-registration-server/internal/registration"
)

// ErrDuplicateOrSave is returned by Register when the record could not be
// stored, either because the email is already registered or because the
// write failed. The cause stays in the wrapped chain.
var ErrDuplicateOrSave = errors.New("Email already registered or save error") //nolint:staticcheck // message is part of the API response

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go RegistrationService

// RegistrationService defines the interface for registration operations
type RegistrationService interface {
	// Register parses, validates and stores a registration request body
	Register(ctx context.Context, body []byte) error

	// ListRegistrations returns every registration in storage order
	ListRegistrations(ctx context.Context) ([]registration.Record, error)

	// ExportCSV renders every registration as CSV.
	// Returns registration.ErrEmptyData when there is nothing to export.
	ExportCSV(ctx context.Context) ([]byte, error)

	// Stats returns branch and year breakdowns of the registrations
	Stats(ctx context.Context) (*registration.Stats, error)

	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error
}
