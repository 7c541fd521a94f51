// Package web renders the HTML pages and carries flash notifications
// between requests.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/student-records/middleware"
	"github.com/upb/student-records/models"
	"github.com/upb/student-records/utils"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "layout.html"

// Messages shown by the access gate
const (
	PermissionDeniedMessage = "You do not have permission to access this function."
	LoginRequiredMessage    = "Please log in to access this page."
	TooManyRequestsMessage  = "Too many login attempts. Please wait a minute and try again."
)

// Page is the data every template receives
type Page struct {
	Title       string
	CurrentUser *models.User
	Flashes     []Flash
	Data        any
}

// Renderer executes the embedded page templates inside the shared layout
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

// NewRenderer parses every page template against the layout
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	return newRenderer(templateFS, logger)
}

func newRenderer(fsys fs.FS, logger *zap.Logger) (*Renderer, error) {
	layout, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(fsys, "templates/"+layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := path.Base(file)
		if name == layoutTemplate {
			continue
		}
		tpl, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tpl.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = tpl
	}

	logger.Debug("templates loaded", zap.Int("pages", len(pages)))
	return &Renderer{pages: pages, logger: logger}, nil
}

var templateFuncs = template.FuncMap{
	"hasRole": func(u *models.User, roles ...string) bool {
		if u == nil {
			return false
		}
		for _, r := range roles {
			if u.Role.String() == r {
				return true
			}
		}
		return false
	},
	"roles": func() []models.Role { return models.Roles },
}

// Render writes the named page with status. Queued flashes are consumed.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	tpl, ok := rd.pages[name]
	if !ok {
		rd.logger.Error("unknown template", zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := Page{
		Title:       title,
		CurrentUser: middleware.CurrentUser(r.Context()),
		Flashes:     PopFlashes(r),
		Data:        data,
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, layoutTemplate, page); err != nil {
		rd.logger.Error("failed to render template",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("template", name),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Forbidden queues the permission notification and renders the access
// denied page with 403
func (rd *Renderer) Forbidden(w http.ResponseWriter, r *http.Request) {
	AddFlash(r, PermissionDeniedMessage, CategoryError)
	rd.Render(w, r, http.StatusForbidden, "access_denied", "Access denied", nil)
}

// LoginRequired sends anonymous users to the login page. The original
// destination is kept only for GET and HEAD, which can be replayed safely.
func (rd *Renderer) LoginRequired(w http.ResponseWriter, r *http.Request) {
	AddFlash(r, LoginRequiredMessage, CategoryInfo)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		Redirect(w, r, "/login")
		return
	}
	Redirect(w, r, utils.WithQuery("/login", "next", r.URL.RequestURI()))
}

// TooManyRequests flashes the throttling notice and renders the rate
// limited page with 429
func (rd *Renderer) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	AddFlash(r, TooManyRequestsMessage, CategoryError)
	rd.Render(w, r, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
}

// Redirect answers a form post or guarded GET with 303 See Other
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
