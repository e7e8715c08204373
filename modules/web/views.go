package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	domain "github.com/example/todo-app/domain/task"
	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "tasks", "unavailable", "error"}

// pageData is passed to every template.
type pageData struct {
	Flash   *Flash
	Session Session

	Tasks    []domain.Task
	Done     int
	Total    int
	Percent  int
	Progress string
	Today    string

	Message string
}

// views holds one template set per page, each combined with the shared layout.
type views struct {
	pages map[string]*template.Template
}

func loadViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (v *views) render(c *fiber.Ctx, status int, page string, data pageData) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	c.Status(status)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
