package controllers

import (
	"bytes"
	"log/slog"
	"net/http"
	"regexp"

	"evently/internal/delivery/http/middleware"
	"evently/internal/delivery/http/views"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// pageWriter renders HTML pages and the shared error page.
type pageWriter struct {
	logger    *slog.Logger
	views     *views.Renderer
	signInURL string
}

// layout builds the layout data for the current request and viewer.
func (p pageWriter) layout(r *http.Request, title string) views.Layout {
	l := views.Layout{Title: title, Path: r.URL.Path, SignInURL: middleware.SignInRedirect(p.signInURL, r.URL.RequestURI())}
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		l.Viewer = &id
	}
	return l
}

// renderBytes renders page into a buffer, for callers that cache the output.
func (p pageWriter) renderBytes(page string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.views.Render(&buf, page, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p pageWriter) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	body, err := p.renderBytes(page, data)
	if err != nil {
		p.logger.ErrorContext(r.Context(), "render failed", "page", page, "path", r.URL.Path, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, body)
}

func (p pageWriter) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	p.render(w, r, status, views.PageError, views.ErrorPage{
		Layout:  p.layout(r, http.StatusText(status)),
		Status:  status,
		Message: msg,
	})
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
