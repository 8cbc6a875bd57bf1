package system_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/event-registration-server/internal/api/system"
	"github.com/stacklok/event-registration-server/internal/service/mocks"
)

func TestSystemRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		readyErr   error
		callsReady bool
		wantStatus int
		check      func(t *testing.T, body map[string]string)
	}{
		{
			name:       "health does not consult the store",
			path:       system.HealthPath,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]string) {
				t.Helper()
				assert.Equal(t, "healthy", body["status"])
			},
		},
		{
			name:       "ready",
			path:       system.ReadinessPath,
			callsReady: true,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]string) {
				t.Helper()
				assert.Equal(t, "ready", body["status"])
			},
		},
		{
			name:       "store unreadable",
			path:       system.ReadinessPath,
			callsReady: true,
			readyErr:   errors.New("permission denied"),
			wantStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, body map[string]string) {
				t.Helper()
				assert.Equal(t, "RegistrationService not ready: permission denied", body["error"])
			},
		},
		{
			name:       "version",
			path:       system.VersionPath,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]string) {
				t.Helper()
				for _, key := range []string{"version", "commit", "build_date", "go_version", "platform"} {
					assert.NotEmpty(t, body[key], key)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockRegistrationService(ctrl)
			if tt.callsReady {
				svc.EXPECT().CheckReadiness(gomock.Any()).Return(tt.readyErr)
			}

			r := chi.NewRouter()
			system.NewRoutes(svc).Register(r)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			tt.check(t, body)
		})
	}
}
