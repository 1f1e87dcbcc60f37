package handler

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/forgo/bookshelf/internal/forms"
	"github.com/forgo/bookshelf/internal/middleware"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "layout.html"

// Raw HTML in posts is escaped, never passed through
var markdownRenderer = markdown.New(
	markdown.HTML(false),
	markdown.Linkify(true),
	markdown.Typographer(true),
	markdown.MaxNesting(10),
)

// Sessions is the part of the session manager the pages use
type Sessions interface {
	Login(ctx context.Context, userID string) error
	Logout(ctx context.Context) error
	Flash(ctx context.Context, style, message string)
	PopFlashes(ctx context.Context) []session.Flash
	IssueConfirmation(ctx context.Context, target string) string
	Confirm(ctx context.Context, target, token string) bool
}

// PermissionSource resolves the book permissions of a set of groups
type PermissionSource interface {
	PermissionsFor(groups []string) model.PermissionSet
}

// Page is the data every template receives
type Page struct {
	Title   string
	User    *model.User
	Flashes []session.Flash
	Timings forms.Timings
	Perms   model.PermissionSet

	// Form state of the page's form, keyed by field name
	Form     map[string]string
	Errors   map[string]string
	NonField string

	// Confirm is the token a confirmation page posts back
	Confirm string
	Next    string

	Data any
}

// CanView and friends drive which catalogue links a page shows
func (p *Page) CanView() bool   { return p.Perms.Has(model.PermissionView) }
func (p *Page) CanCreate() bool { return p.Perms.Has(model.PermissionCreate) }
func (p *Page) CanEdit() bool   { return p.Perms.Has(model.PermissionEdit) }
func (p *Page) CanDelete() bool { return p.Perms.Has(model.PermissionDelete) }

// IsAuthor reports whether the current user wrote the post or comment
func (p *Page) IsAuthor(authorID string) bool {
	return p.User != nil && authorID != "" && p.User.ID == authorID
}

// Value returns the submitted value of a form field
func (p *Page) Value(field string) string {
	return p.Form[field]
}

// Error returns the error message of a form field
func (p *Page) Error(field string) string {
	return p.Errors[field]
}

// FieldView is what the "field" template needs to draw one form input
type FieldView struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

// Field prepares a form input. Password inputs never echo their value.
func (p *Page) Field(name, label, kind string) FieldView {
	f := FieldView{Name: name, Label: label, Type: kind, Error: p.Errors[name]}
	if kind != "password" {
		f.Value = p.Form[name]
	}
	return f
}

// Views renders the embedded page templates
type Views struct {
	pages    map[string]*template.Template
	sessions Sessions
	perms    PermissionSource
	timings  forms.Timings
}

// ViewsConfig holds dependencies for the views
type ViewsConfig struct {
	Sessions Sessions
	Perms    PermissionSource
	Timings  forms.Timings
}

// NewViews parses every page template together with the layout
func NewViews(cfg ViewsConfig) (*Views, error) {
	if cfg.Timings == (forms.Timings{}) {
		cfg.Timings = forms.DefaultTimings
	}

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	v := &Views{
		pages:    make(map[string]*template.Template, len(names)),
		sessions: cfg.Sessions,
		perms:    cfg.Perms,
		timings:  cfg.Timings,
	}
	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == layoutTemplate {
			continue
		}
		t, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(templateFS, "templates/"+layoutTemplate, path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

var templateFuncs = template.FuncMap{
	"markdown": renderMarkdown,
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"truncate": func(n int, s string) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n]) + "…"
	},
}

func renderMarkdown(src string) template.HTML {
	return template.HTML(markdownRenderer.RenderToString([]byte(src)))
}

// Render executes the named page and writes it with status. The page is
// filled with the request user, their permissions and any queued flashes.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, name string, page *Page) {
	t, ok := v.pages[name]
	if !ok {
		slog.Error("template not found", slog.String("template", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if page == nil {
		page = &Page{}
	}
	page.User = middleware.GetUser(r.Context())
	if page.User != nil && v.perms != nil {
		page.Perms = v.perms.PermissionsFor(page.User.Groups)
	}
	page.Timings = v.timings
	if v.sessions != nil {
		page.Flashes = v.sessions.PopFlashes(r.Context())
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutTemplate, page); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.Any("error", err),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderError renders err as an error page. Unauthenticated requests are
// sent to the login page instead.
func (v *Views) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	problem := MapServiceError(err)
	if problem.Status == http.StatusUnauthorized {
		middleware.RedirectToLogin(w, r)
		return
	}
	v.Render(w, r, problem.Status, "error.html", &Page{Title: problem.Title, Data: problem})
}

// Forbidden renders the 403 page used by permission gates
func (v *Views) Forbidden() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem := model.NewForbiddenError("You do not have permission to access this page.")
		v.Render(w, r, http.StatusForbidden, "error.html", &Page{Title: problem.Title, Data: problem})
	})
}

// NotFound renders the 404 page for unmatched paths
func (v *Views) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem := model.NewNotFoundError("page")
		v.Render(w, r, http.StatusNotFound, "error.html", &Page{Title: problem.Title, Data: problem})
	})
}

// redirect queues a flash message and sends a 303 to target
func (v *Views) redirect(w http.ResponseWriter, r *http.Request, target, style, message string) {
	if message != "" && v.sessions != nil {
		v.sessions.Flash(r.Context(), style, message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// formFailure turns a service error into form state. It reports false when
// the error does not belong on the form.
func formFailure(err error) (status int, fields map[string]string, ok bool) {
	problem := MapServiceError(err)
	if len(problem.Errors) == 0 {
		return 0, nil, false
	}
	return problem.Status, problem.FieldMessages(), true
}

// postedForm parses the request body and returns the sanitized values of fields.
// Password fields are passed through untouched. Post and comment content keeps
// its angle brackets: markdown renders with raw HTML off and templates escape it.
func postedForm(r *http.Request, fields ...string) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		raw := r.PostForm.Get(f)
		if strings.HasPrefix(f, "password") {
			values[f] = raw
			continue
		}
		if f == "content" {
			values[f] = forms.Normalize(raw)
			continue
		}
		values[f] = forms.Sanitize(raw)
	}
	return values, nil
}
