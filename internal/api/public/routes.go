// Package public provides the registration form and its intake endpoint.
package public

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/event-registration-server/internal/api/common"
	"github.com/stacklok/event-registration-server/internal/registration"
	"github.com/stacklok/event-registration-server/internal/service"
	"github.com/stacklok/event-registration-server/internal/web"
)

// MaxBodyBytes caps the size of a registration request body
const MaxBodyBytes = 1 << 20

const (
	pageTitle     = "Event Registration"
	msgUnreadable = "Failed to read request body"
	msgUnexpected = "Registration failed"
)

// Routes defines the public routes
type Routes struct {
	service service.RegistrationService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.RegistrationService) *Routes {
	return &Routes{service: svc}
}

// Register adds the form page, the intake endpoint and the static assets to r
func (rr *Routes) Register(r chi.Router) {
	r.Get("/", indexHandler)
	r.Post("/register", rr.registerHandler)
	r.Handle("/static/*", web.StaticHandler("/static"))
}

// indexHandler handles GET /
func indexHandler(w http.ResponseWriter, r *http.Request) {
	data := web.IndexData{
		Title:    pageTitle,
		Years:    web.FormYears,
		Branches: web.FormBranches,
	}
	if err := web.Render(w, web.PageIndex, data, http.StatusOK); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render registration form", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// registerHandler handles POST /register.
// Outcomes are reported in the body; the status is always 200.
func (rr *Routes) registerHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to read registration body", "error", err)
		common.WriteFailure(w, msgUnreadable, http.StatusOK)
		return
	}

	if err := rr.service.Register(r.Context(), body); err != nil {
		common.WriteFailure(w, failureMessage(err), http.StatusOK)
		return
	}
	common.WriteSuccess(w)
}

// failureMessage maps a Register error to the text shown to the user
func failureMessage(err error) string {
	var ve *registration.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, service.ErrDuplicateOrSave):
		return service.ErrDuplicateOrSave.Error()
	default:
		return msgUnexpected
	}
}
