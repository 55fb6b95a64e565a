package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html templates/error/*.html
var templates embed.FS

const layoutFile = "templates/layout.html"

// Renderer implements gin's render.HTMLRender over the embedded pages.
// Each page is parsed together with the shared layout under its own name.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page. Page names are paths relative to
// templates/ without the extension, e.g. "book" or "error/catalog_unavailable".
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	err := fs.WalkDir(templates, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || path.Ext(p) != ".html" {
			return nil
		}

		tmpl, err := template.New(path.Base(layoutFile)).Funcs(Funcs()).ParseFS(templates, layoutFile, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		r.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MustRenderer panics when the embedded templates do not parse.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Instance satisfies render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	return render.HTML{
		Template: r.lookup(name),
		Name:     "layout",
		Data:     data,
	}
}

// Has reports whether a page with that name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func (r *Renderer) lookup(name string) *template.Template {
	if tmpl, ok := r.pages[name]; ok {
		return tmpl
	}
	return template.Must(template.New("layout").Parse("page not found"))
}

// Funcs are the helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 15:04")
		},
		"add": func(a, b int) int { return a + b },
	}
}
