package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"sgc/internal/adapters/http/middleware"
	"sgc/internal/adapters/markdown"
	"sgc/internal/application/orchestrators"
	"sgc/internal/domain/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// isJSONBody reports whether a POST carries a JSON body.
func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// isUserError reports whether err is a validation failure the visitor can fix.
func isUserError(err error, sentinels ...error) bool {
	if errors.Is(err, orchestrators.ErrInvalidInput) {
		return true
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// redirectWithFlash sends the browser back to path with a one-line status message.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, flash string) {
	if flash != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "flash=" + url.QueryEscape(flash)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, templateName, http.StatusOK, data)
}

// renderTemplateStatus renders templateName inside layout.html with the given status code.
func renderTemplateStatus(w http.ResponseWriter, r *http.Request, templateName string, status int, data any) {
	sess, signedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"isLoggedIn":   func() bool { return signedIn },
		"currentName":  func() string { return sess.Name },
		"currentRole":  func() string { return sess.Role },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"flash":        func() string { return r.URL.Query().Get("flash") },
		"percent":      report.FormatPercent,
		"label":        report.Label,
		"monthLabel":   report.MonthLabel,
		"joinDates":    func(dates []string) string { return strings.Join(dates, ", ") },
		"renderMarkdown": func(md string) template.HTML {
			return template.HTML(markdown.Render(md))
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"barWidth": func(n, max int) int {
			if max <= 0 {
				return 0
			}
			return n * 100 / max
		},
		"paginationQuery": func(page int, search string, perPage int, extra ...string) template.URL {
			q := url.Values{}
			q.Set("page", fmt.Sprint(page))
			if search != "" {
				q.Set("q", search)
			}
			if perPage > 0 {
				q.Set("per_page", fmt.Sprint(perPage))
			}
			for i := 0; i+1 < len(extra); i += 2 {
				if extra[i+1] != "" {
					q.Set(extra[i], extra[i+1])
				}
			}
			return template.URL(q.Encode())
		},
		"selected": func(a, b string) template.HTMLAttr {
			if a == b {
				return "selected"
			}
			return ""
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, fmt.Errorf("parse %s: %w", templateName, err))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
