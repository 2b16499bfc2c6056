package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/odyssey-erp/recon-portal/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavLink is one entry of the report navigation bar.
type NavLink struct {
	Href  string
	Title string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CurrentPath string
	Email       string
	Nav         []NavLink
	Data        any
}

// NewEngine parses the page templates embedded in the binary.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").ParseFS(web.Templates, "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// ParseReportTemplates parses the templates used by the offline report renderer.
func ParseReportTemplates() (*template.Template, error) {
	return template.New("report").ParseFS(web.Templates, "templates/partials/*.html", "templates/report/*.html")
}

// Render executes a named template with TemplateData and status 200.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes a named template and writes it with the given status.
// The template is executed into a buffer first so a failure never leaves a
// half-written page behind.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// NotFound writes the uniform not-found page.
func (e *Engine) NotFound(w http.ResponseWriter, r *http.Request) {
	data := TemplateData{Title: "Not Found", CurrentPath: r.URL.Path}
	if err := e.RenderStatus(w, http.StatusNotFound, "pages/404.html", data); err != nil {
		http.NotFound(w, r)
	}
}
