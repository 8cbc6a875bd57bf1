// Package system provides the health, readiness and version endpoints.
package system

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/event-registration-server/internal/api/common"
	"github.com/stacklok/event-registration-server/internal/service"
	"github.com/stacklok/event-registration-server/pkg/versions"
)

// Endpoint paths
const (
	HealthPath    = "/health"
	ReadinessPath = "/readiness"
	VersionPath   = "/version"
)

// StatusResponse is the body of /health and a passing /readiness
type StatusResponse struct {
	Status string `json:"status"`
}

// Routes serves the probes. Liveness never touches the store; readiness does.
type Routes struct {
	service service.RegistrationService
}

// NewRoutes creates the system routes for svc
func NewRoutes(svc service.RegistrationService) *Routes {
	return &Routes{service: svc}
}

// Register adds the system endpoints to r
func (rr *Routes) Register(r chi.Router) {
	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSONResponse(w, StatusResponse{Status: "healthy"}, http.StatusOK)
	})
	r.Get(ReadinessPath, rr.readiness)
	r.Get(VersionPath, func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
	})
}

func (rr *Routes) readiness(w http.ResponseWriter, r *http.Request) {
	if err := rr.service.CheckReadiness(r.Context()); err != nil {
		common.WriteErrorResponse(w, "RegistrationService not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	common.WriteJSONResponse(w, StatusResponse{Status: "ready"}, http.StatusOK)
}
