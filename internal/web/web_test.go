package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		page     string
		data     any
		contains []string
	}{
		{
			name:     "index lists form options",
			page:     PageIndex,
			data:     IndexData{Title: "Register", Years: FormYears, Branches: FormBranches},
			contains: []string{"<title>Register</title>", `id="registrationForm"`, `<option value="CSE">CSE</option>`, "/static/js/register.js"},
		},
		{
			name:     "login shows escaped flash",
			page:     PageLogin,
			data:     LoginData{Title: "Login", Email: "<b>x</b>", Flash: "Invalid credentials. Please try again."},
			contains: []string{"Invalid credentials. Please try again.", "&lt;b&gt;x&lt;/b&gt;"},
		},
		{
			name:     "admin greets the admin",
			page:     PageAdmin,
			data:     AdminData{Title: "Admin", Email: "Admin@gdg"},
			contains: []string{"Signed in as Admin@gdg", `href="/download-csv"`, "/static/js/admin.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			require.NoError(t, Render(rr, tt.page, tt.data, http.StatusOK))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
			for _, s := range tt.contains {
				assert.Contains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestRender_UnknownPage(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	require.Error(t, Render(rr, "missing.html", nil, http.StatusOK))
	assert.Empty(t, rr.Body.String())
}

func TestStaticHandler(t *testing.T) {
	t.Parallel()

	handler := StaticHandler("/static")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/js/register.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fetch('/register'")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/js/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// Registration fields reach the admin page through /api/registrations and
// /api/stats; the scripts must never hand them to an HTML parser.
func TestScriptsInsertTextOnly(t *testing.T) {
	t.Parallel()

	scripts, err := fs.Glob(staticFS, "static/js/*.js")
	require.NoError(t, err)
	require.NotEmpty(t, scripts)

	for _, name := range scripts {
		data, err := staticFS.ReadFile(name)
		require.NoError(t, err)
		src := string(data)

		for _, sink := range []string{"innerHTML", "outerHTML", "insertAdjacentHTML", "document.write"} {
			assert.NotContains(t, src, sink, "%s uses %s", name, sink)
		}
	}

	admin, err := staticFS.ReadFile("static/js/admin.js")
	require.NoError(t, err)
	assert.Contains(t, string(admin), "createTextNode")
}
