package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
}

// CapsulePageData is the template data for the capsule view.
type CapsulePageData struct {
	PageData
	Capsule      *capsule.Capsule
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	policy    *bluemonday.Policy
	log       *logging.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *logging.Logger) *Renderer {
	if log == nil {
		log = logging.Nop()
	}
	funcMap := template.FuncMap{
		"formatTime":     formatTime,
		"formatReadTime": formatReadTime,
		"deref":          deref,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"capsule": "capsule.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		policy:    bluemonday.UGCPolicy(),
		log:       log,
	}
}

// renderCapsule renders c as a full HTML page.
func (r *Renderer) renderCapsule(w http.ResponseWriter, c *capsule.Capsule) {
	r.renderPage(w, http.StatusOK, "capsule", CapsulePageData{
		PageData:     PageData{Title: c.Title, Version: r.version},
		Capsule:      c,
		RenderedHTML: r.renderMarkdown(capsule.ToMarkdown(c)),
	})
}

// renderPage renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPage(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.log.Error("template execution error", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		writeError(w, err)
		return
	}

	bErr, ok := errors.As(err)
	if !ok {
		bErr = errors.NewInternal(err)
	}
	r.renderPage(w, bErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", bErr.Status),
			Version: r.version,
		},
		StatusCode: bErr.Status,
		Message:    bErr.Message,
	})
}

// renderMarkdown converts markdown to HTML with goldmark and sanitizes the
// result, since capsule text comes from model output.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// writeResult writes a pipeline envelope with its matching status.
func writeResult(w http.ResponseWriter, res ops.Result) {
	if res.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	renderJSON(w, status, res)
}

// writeError writes err as a failure envelope.
func writeError(w http.ResponseWriter, err error) {
	writeResult(w, ops.NewResult(nil, err))
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// formatTime formats a time as "2006-01-02 15:04" UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// formatReadTime renders a read time in seconds as "45s" or "2 min".
func formatReadTime(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%d min", (seconds+30)/60)
}

// deref dereferences a string pointer, returning "" if nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
