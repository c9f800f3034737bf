// Package web serves the browser form that calls the delete-user endpoint.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
)

//go:embed static
var staticFS embed.FS

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "http://localhost:4001/auth/delete/user"

var indexTmpl = template.Must(template.ParseFS(staticFS, "static/index.html"))

// Handler serves the form page and its script.
type Handler struct {
	endpoint string
	csp      string
	script   []byte
	logger   *slog.Logger
}

// New creates a Handler whose form posts to endpoint.
func New(endpoint string, logger *slog.Logger) (*Handler, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid delete endpoint %q", endpoint)
	}

	script, err := staticFS.ReadFile("static/delete-user.js")
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	return &Handler{
		endpoint: endpoint,
		csp: fmt.Sprintf(
			"default-src 'none'; script-src 'self'; connect-src 'self' %s://%s; frame-ancestors 'none'; form-action 'none'",
			u.Scheme, u.Host,
		),
		script: script,
		logger: logger,
	}, nil
}

// Index renders the page. The form itself is injected by the script on load.
//
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, struct{ Endpoint string }{h.endpoint}); err != nil {
		h.logger.Error("failed to render index", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Security-Policy", h.csp)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Script serves the form script.
//
// GET /static/delete-user.js
func (h *Handler) Script(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.script)
}
