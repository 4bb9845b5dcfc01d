// Package views renders the embedded HTML pages and serves the stylesheet.
package views

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

const layoutFile = "templates/layout.html"

// Page names accepted by Render.
const (
	Index      = "index"
	Signup     = "signup"
	Signin     = "signin"
	CreatePost = "create-post"
	EditPost   = "edit-post"
	Invalid    = "invalid"
)

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	names := []string{Index, Signup, Signin, CreatePost, EditPost, Invalid}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.ParseFS(templateFS, layoutFile, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded static directory.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
