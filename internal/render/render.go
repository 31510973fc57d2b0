// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the staff area. Every page is parsed together with the base layout of
// its directory, except for standalone pages that carry their own <html>.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"tutorialsite/internal/markdown"
	"tutorialsite/internal/middleware"
	"tutorialsite/internal/session"
)

//go:embed templates/site/*.html templates/admin/*.html
var templateFS embed.FS

// layouts are the template directories; each has a base.html.
var layouts = []string{"site", "admin"}

// standaloneTemplates render as full HTML pages without the base layout.
var standaloneTemplates = map[string]bool{
	"2fa_setup":  true,
	"2fa_verify": true,
}

// PageData holds all data passed to templates.
type PageData struct {
	Title     string            // Page title for <title> tag
	Section   string            // Active navigation entry
	SiteName  string            // Brand shown in the navbar and <title>
	Session   *session.Data     // Current member (nil when anonymous)
	CSRFToken string            // Hidden field value for POST forms
	Data      map[string]any    // Page-specific data
	Form      any               // Submitted form values, re-shown on errors
	Errors    map[string]string // Per-field validation messages
	Flashes   []session.Flash   // One-time notification messages
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	sessions  *session.Store
	siteName  string
}

// New parses every embedded page template. sessions supplies the flash
// messages shown on each page and may be nil in tests.
func New(sessions *session.Store, siteName string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		sessions:  sessions,
		siteName:  siteName,
		funcMap: template.FuncMap{
			"content": markdown.Content,
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			// fieldError looks up a validation message; safe on a nil map.
			"fieldError": func(errs map[string]string, field string) string {
				return errs[field]
			},
			"date": func(t time.Time) string {
				return t.Format("January 2, 2006")
			},
			"datetime": func(t time.Time) string {
				return t.Format("2006-01-02 15:04")
			},
			"inc": func(i int) int { return i + 1 },
			// dict builds the argument map for the "field" partial.
			"dict": func(kv ...any) (map[string]any, error) {
				if len(kv)%2 != 0 {
					return nil, fmt.Errorf("dict: odd number of arguments")
				}
				m := make(map[string]any, len(kv)/2)
				for i := 0; i < len(kv); i += 2 {
					key, ok := kv[i].(string)
					if !ok {
						return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
					}
					m[key] = kv[i+1]
				}
				return m, nil
			},
			"lower": strings.ToLower,
		},
	}

	for _, layout := range layouts {
		dir := "templates/" + layout
		entries, err := fs.ReadDir(templateFS, dir)
		if err != nil {
			return nil, fmt.Errorf("read embedded templates: %w", err)
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" || path.Ext(name) != ".html" {
				continue
			}
			tmplName := strings.TrimSuffix(name, ".html")
			if _, dup := r.templates[tmplName]; dup {
				return nil, fmt.Errorf("duplicate template %s", tmplName)
			}

			var tmpl *template.Template
			var parseErr error
			if standaloneTemplates[tmplName] {
				tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, dir+"/"+name)
			} else {
				tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
					templateFS, dir+"/base.html", dir+"/"+name,
				)
			}
			if parseErr != nil {
				return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
			}

			r.templates[tmplName] = tmpl
		}
	}

	return r, nil
}

// Has reports whether a page template exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.Status(w, r, http.StatusOK, name, data)
}

// Status renders a page with the given status code. The page is executed
// into a buffer first so a template error turns into a clean 500.
func (rn *Renderer) Status(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("template not found", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.SiteName = rn.siteName
	data.CSRFToken = middleware.GetCSRFToken(r)
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if rn.sessions != nil {
		data.Flashes = append(data.Flashes, rn.sessions.PopFlashes(w, r)...)
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
