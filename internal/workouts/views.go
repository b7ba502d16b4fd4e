package workouts

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/2beens/workoutlog/pkg"

	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	viewLog           = "log.html"
	viewHistory       = "history.html"
	viewConfirmDelete = "confirm_delete.html"
	viewNotFound      = "not_found.html"
	viewProgress      = "progress.html"
)

type views struct {
	templates map[string]*template.Template
}

func newViews() (*views, error) {
	pages := []string{viewLog, viewHistory, viewConfirmDelete, viewNotFound, viewProgress}
	v := &views{
		templates: make(map[string]*template.Template, len(pages)),
	}
	for _, page := range pages {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		v.templates[page] = t
	}
	return v, nil
}

type basePage struct {
	Title    string
	Messages []flashMessage
}

// render executes into a buffer first, a failing template never leaves a half written page.
func (v *views) render(w http.ResponseWriter, page string, data any, statusCode int) {
	t, ok := v.templates[page]
	if !ok {
		log.Errorf("template %s not found", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Errorf("execute template %s: %s", page, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), statusCode)
}
