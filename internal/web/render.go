// Package web renders the HTML views from embedded templates.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ayush/user-management/web/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every view is rendered with.
type Page struct {
	Title string
	Flash *models.Flash
	// Redirect, when set, sends the browser to URL after Delay so the flash
	// can be read first.
	Redirect *Redirect
	// Authenticated controls whether the navbar shows the logout button.
	Authenticated bool
	Data          any
}

type Redirect struct {
	URL   string
	Delay time.Duration
}

// Refresh formats the redirect as an http-equiv refresh value.
func (r Redirect) Refresh() string {
	return strconv.FormatFloat(r.Delay.Seconds(), 'f', -1, 64) + ";url=" + r.URL
}

var funcs = template.FuncMap{
	"orNA": func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	},
}

// FieldError is the inline error of one form field.
type FieldError struct {
	Name    string
	Message string
}

// Renderer holds one parsed template set per view, plus the fragments served
// without the layout.
type Renderer struct {
	views     map[string]*template.Template
	fragments *template.Template
	logger    *slog.Logger
}

// NewRenderer parses the embedded layout together with each view.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	views := map[string]*template.Template{}
	for _, name := range []string{"register", "login", "home", "redirect"} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		views[name] = t
	}
	fragments, err := template.New("fragments.html").Funcs(funcs).ParseFS(templateFS, "templates/fragments.html")
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}
	return &Renderer{views: views, fragments: fragments, logger: logger}, nil
}

// Render writes view with the given status. Output is buffered so a template
// error still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, view string, page Page) {
	t, ok := r.views[view]
	if !ok {
		r.logger.Error("unknown view", "view", view)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		r.logger.Error("render failed", "view", view, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Fragment writes a named fragment on its own, for in-place page updates.
func (r *Renderer) Fragment(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("render fragment failed", "fragment", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded stylesheet and script under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
