// Package web holds the embedded HTML pages and browser scripts of the
// registration form and the admin panel.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names
const (
	PageIndex = "index.html"
	PageLogin = "login.html"
	PageAdmin = "admin.html"
)

// Options offered by the registration form
var (
	FormYears    = []string{"1", "2", "3", "4"}
	FormBranches = []string{"CSE", "IT", "ECE", "EE", "ME", "CE", "AIML", "DS"}
)

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// IndexData is rendered by the registration form
type IndexData struct {
	Title    string
	Years    []string
	Branches []string
}

// LoginData is rendered by the login page
type LoginData struct {
	Title string
	Email string
	Flash string
}

// AdminData is rendered by the admin panel
type AdminData struct {
	Title string
	Email string
}

// Render executes the named page into w with the given status.
// The page is rendered to a buffer first so a template error leaves w untouched.
func Render(w http.ResponseWriter, page string, data any, status int) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded scripts under the prefix it is mounted at
func StaticHandler(prefix string) http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
