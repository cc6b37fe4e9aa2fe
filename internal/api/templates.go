package api

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/kdimtricp/damagecheck/internal/viewer"
)

const baseTemplate = "templates/base.html"

// Templates holds one parsed set per page, each combined with the shared layout.
type Templates struct {
	pages map[string]*template.Template
}

func NewTemplates(fsys fs.FS, mediaBase *url.URL) (*Templates, error) {
	funcs := template.FuncMap{
		"join": strings.Join,
		"cost": viewer.FormatCost,
		"media": func(raw string) string {
			return resolveMedia(mediaBase, raw)
		},
	}

	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}

	t := &Templates{pages: make(map[string]*template.Template)}
	for _, p := range pages {
		if p == baseTemplate {
			continue
		}
		tmpl, err := template.New("").Funcs(funcs).ParseFS(fsys, baseTemplate, p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", p, err)
		}
		t.pages[strings.TrimPrefix(p, "templates/")] = tmpl
	}
	return t, nil
}

// Render executes the page into a buffer first so a template error never leaves a half-written page.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func resolveMedia(base *url.URL, raw string) string {
	if base == nil || raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() {
		return raw
	}
	return base.ResolveReference(u).String()
}
