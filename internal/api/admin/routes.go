// Package admin provides the login flow and the session-gated admin panel:
// the registration list, statistics and CSV download.
package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/event-registration-server/internal/api/common"
	"github.com/stacklok/event-registration-server/internal/auth"
	"github.com/stacklok/event-registration-server/internal/registration"
	"github.com/stacklok/event-registration-server/internal/service"
	"github.com/stacklok/event-registration-server/internal/web"
)

// Paths served by the admin routes
const (
	LoginPath  = "/login"
	LogoutPath = "/logout"
	AdminPath  = "/admin"
	HomePath   = "/"
)

const (
	loginTitle  = "Admin Login"
	adminTitle  = "Registrations"
	msgLoadFail = "Failed to load registrations"
)

// Routes defines the admin routes
type Routes struct {
	service  service.RegistrationService
	authn    *auth.Authenticator
	sessions *auth.SessionManager
	now      func() time.Time
}

// NewRoutes creates a new Routes instance. now stamps the CSV download
// filename and defaults to time.Now.
func NewRoutes(
	svc service.RegistrationService,
	authn *auth.Authenticator,
	sessions *auth.SessionManager,
	now func() time.Time,
) *Routes {
	if now == nil {
		now = time.Now
	}
	return &Routes{
		service:  svc,
		authn:    authn,
		sessions: sessions,
		now:      now,
	}
}

// Register adds the login flow and the gated admin endpoints to r
func (rr *Routes) Register(r chi.Router) {
	r.Get(LoginPath, rr.loginPageHandler)
	r.Post(LoginPath, rr.loginHandler)
	r.Get(LogoutPath, rr.logoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(rr.sessions, LoginPath))

		r.Get(AdminPath, rr.adminPageHandler)
		r.Get("/api/registrations", rr.listHandler)
		r.Get("/api/stats", rr.statsHandler)
		r.Get("/download-csv", rr.downloadHandler)
	})
}

// loginPageHandler handles GET /login
func (*Routes) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	renderLogin(w, r, web.LoginData{Title: loginTitle})
}

// loginHandler handles POST /login
func (rr *Routes) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.WarnContext(r.Context(), "Failed to parse login form", "error", err)
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	if err := rr.authn.Check(email, password); err != nil {
		slog.WarnContext(r.Context(), "Admin login rejected", "email", email)
		renderLogin(w, r, web.LoginData{
			Title: loginTitle,
			Email: email,
			Flash: auth.ErrInvalidCredentials.Error(),
		})
		return
	}

	sess, token, err := rr.sessions.Create(email)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create admin session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rr.sessions.SetCookie(w, token, sess)
	slog.InfoContext(r.Context(), "Admin logged in", "email", email, "session_id", sess.ID)
	http.Redirect(w, r, AdminPath, http.StatusFound)
}

// logoutHandler handles GET /logout
func (rr *Routes) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if sess, err := rr.sessions.FromRequest(r); err == nil {
		rr.sessions.Destroy(sess.ID)
		slog.InfoContext(r.Context(), "Admin logged out", "email", sess.Email, "session_id", sess.ID)
	}
	rr.sessions.ClearCookie(w)
	http.Redirect(w, r, HomePath, http.StatusFound)
}

// adminPageHandler handles GET /admin
func (*Routes) adminPageHandler(w http.ResponseWriter, r *http.Request) {
	data := web.AdminData{Title: adminTitle}
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		data.Email = sess.Email
	}
	if err := web.Render(w, web.PageAdmin, data, http.StatusOK); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render admin page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// listHandler handles GET /api/registrations
func (rr *Routes) listHandler(w http.ResponseWriter, r *http.Request) {
	records, err := rr.service.ListRegistrations(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list registrations", "error", err)
		common.WriteFailure(w, msgLoadFail, http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, records, http.StatusOK)
}

// statsHandler handles GET /api/stats
func (rr *Routes) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := rr.service.Stats(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute registration stats", "error", err)
		common.WriteFailure(w, msgLoadFail, http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, stats, http.StatusOK)
}

// downloadHandler handles GET /download-csv
func (rr *Routes) downloadHandler(w http.ResponseWriter, r *http.Request) {
	data, err := rr.service.ExportCSV(r.Context())
	switch {
	case errors.Is(err, registration.ErrEmptyData):
		common.WriteFailure(w, registration.ErrEmptyData.Error(), http.StatusOK)
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to export registrations", "error", err)
		common.WriteFailure(w, msgLoadFail, http.StatusInternalServerError)
		return
	}

	filename := registration.ExportFilename(rr.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.WarnContext(r.Context(), "Failed to write CSV download", "error", err)
	}
}

func renderLogin(w http.ResponseWriter, r *http.Request, data web.LoginData) {
	if err := web.Render(w, web.PageLogin, data, http.StatusOK); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render login page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
