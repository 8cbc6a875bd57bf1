package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "json data",
			write:      func(w http.ResponseWriter) { WriteJSONResponse(w, map[string]int{"total": 3}, http.StatusOK) },
			wantStatus: http.StatusOK,
			wantBody:   `{"total":3}`,
		},
		{
			name:       "error response",
			write:      func(w http.ResponseWriter) { WriteErrorResponse(w, "not ready", http.StatusServiceUnavailable) },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"not ready"}`,
		},
		{
			name:       "success omits error",
			write:      WriteSuccess,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:       "failure carries message",
			write:      func(w http.ResponseWriter) { WriteFailure(w, "No registrations found", http.StatusOK) },
			wantStatus: http.StatusOK,
			wantBody:   `{"success":false,"error":"No registrations found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			tt.write(rr)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}
