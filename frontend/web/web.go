// Package web embeds the page templates and static assets of the frontend.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

const (
	baseTemplate = "base.html"
	tmplPath     = "templates"
)

//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var Static embed.FS

// LoadTemplates pairs every page with the base layout, keyed by file name.
// Pages are executed through the "base" template.
func LoadTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(Templates, path.Join(tmplPath, "*.html"))
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		name := path.Base(page)
		if name == baseTemplate {
			continue
		}
		tmpl, err := template.ParseFS(Templates, path.Join(tmplPath, baseTemplate), page)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}
