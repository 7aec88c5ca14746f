package util

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const layoutFile = "layout.html"

// Renderer holds every page parsed together with the shared layout and the
// partials (files starting with "_"). Pages execute the "base" template
// defined by the layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("02.01.2006 15:04")
	},
	// for user-chosen path segments such as /profile/{name}
	"pathEscape": url.PathEscape,
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

// NewRenderer parses every page of fsys once.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	shared := []string{layoutFile}
	var pages []string
	for _, name := range names {
		switch {
		case name == layoutFile:
		case strings.HasPrefix(name, "_"):
			shared = append(shared, name)
		default:
			pages = append(pages, name)
		}
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		files := append(append([]string(nil), shared...), name)
		t, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	if len(r.pages) == 0 {
		return nil, fmt.Errorf("no templates besides %s", layoutFile)
	}
	return r, nil
}

// Render executes page name into a buffer and only then writes status and
// body, so a template error never leaves half a page on the wire.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
