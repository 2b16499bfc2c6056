package report

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/recon-portal/internal/shared"
	"github.com/odyssey-erp/recon-portal/internal/view"
)

// Handler serves rendered reports and raw downloads. It must be mounted
// behind the session guard.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	sections  []Section
	nav       []view.NavLink
	reports   fs.FS
	data      fs.FS
}

// NewHandler creates a report handler. reports is rooted at the rendered
// output directory and data at the scan input directory.
func NewHandler(logger *slog.Logger, templates *view.Engine, sections []Section, reports, data fs.FS) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		templates: templates,
		sections:  sections,
		nav:       NavLinks(sections),
		reports:   reports,
		data:      data,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/downloads/{file}", h.download)
	r.Get("/{report}", h.serve)
}

// ValidateName rejects report names that could leave the report directory.
func ValidateName(name string) error {
	switch {
	case name == "",
		strings.HasPrefix(name, "."),
		strings.ContainsAny(name, "/\\\x00"),
		strings.Contains(name, ".."):
		return shared.ErrPathRejected
	}
	return nil
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	data := view.TemplateData{
		Title:       "Dashboard",
		CurrentPath: r.URL.Path,
		Nav:         h.nav,
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		data.Email = sess.Email
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "report"))
	if err != nil || ValidateName(name) != nil {
		h.logger.Warn("report name rejected", slog.String("path", r.URL.Path))
		h.templates.NotFound(w, r)
		return
	}
	h.serveFile(w, r, h.reports, name+".html", "text/html; charset=utf-8", false)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	for _, sec := range h.sections {
		if sec.Mode == ModeDownloadOnly && sec.File == file {
			h.serveFile(w, r, h.data, sec.File, "text/plain; charset=utf-8", true)
			return
		}
	}
	h.templates.NotFound(w, r)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, fsys fs.FS, name, contentType string, attachment bool) {
	f, err := fsys.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("open report file", slog.String("name", name), slog.Any("error", err))
		}
		h.templates.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.templates.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	if rs, ok := f.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, info.ModTime(), rs)
		return
	}
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("stream report file", slog.String("name", name), slog.Any("error", err))
	}
}
