package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/forms"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/session"
)

type queuedFlashes struct {
	*fakeSessions
	queued []session.Flash
}

func (s *queuedFlashes) PopFlashes(context.Context) []session.Flash {
	out := s.queued
	s.queued = nil
	return out
}

func TestNewViews_ParsesEveryPage(t *testing.T) {
	views := newTestViews(t, newFakeSessions())
	for _, name := range []string{
		"error.html", "home.html", "login.html", "register.html", "profile.html",
		"post_list.html", "post_results.html", "post_detail.html", "post_form.html",
		"comment_form.html", "confirm_delete.html", "book_list.html", "book_form.html",
	} {
		if _, ok := views.pages[name]; !ok {
			t.Errorf("expected page %s to be parsed", name)
		}
	}
	if _, ok := views.pages[layoutTemplate]; ok {
		t.Error("the layout is not a page of its own")
	}
}

func TestNewViews_DefaultTimings(t *testing.T) {
	views := newTestViews(t, nil)
	if views.timings != forms.DefaultTimings {
		t.Errorf("expected default timings, got %+v", views.timings)
	}
}

func TestPage_FieldNeverEchoesPasswords(t *testing.T) {
	p := &Page{
		Form:   map[string]string{"password1": "hunter22", "email": "a@example.com"},
		Errors: map[string]string{"password1": "Too short."},
	}

	pw := p.Field("password1", "Password", "password")
	if pw.Value != "" {
		t.Errorf("expected empty password value, got %q", pw.Value)
	}
	if pw.Error != "Too short." {
		t.Errorf("expected error to be kept, got %q", pw.Error)
	}
	if email := p.Field("email", "Email", "email"); email.Value != "a@example.com" {
		t.Errorf("expected email value, got %q", email.Value)
	}
}

func TestPage_Permissions(t *testing.T) {
	p := &Page{Perms: access.Default().PermissionsFor([]string{access.RoleEditors})}
	if !p.CanView() || !p.CanCreate() || !p.CanEdit() {
		t.Error("editors can view, create and edit")
	}
	if p.CanDelete() {
		t.Error("editors cannot delete")
	}
	if p.IsAuthor("u1") {
		t.Error("anonymous page has no author")
	}
}

func TestRender_LayoutCarriesTimingsAndUser(t *testing.T) {
	sessions := newFakeSessions()
	views := newTestViews(t, sessions)
	views.timings = forms.Timings{
		AlertDismissAfter:   2 * time.Second,
		AlertFade:           250 * time.Millisecond,
		ButtonReenableAfter: time.Second,
	}

	rec := httptest.NewRecorder()
	views.Render(rec, getRequest("/", testAuthor), http.StatusOK, "home.html", &Page{
		Title: "Home",
		Data:  &model.PostPage{Page: 1, PageSize: model.PostsPageSize},
	})

	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`data-alert-dismiss-after="2000"`,
		`data-alert-fade="250"`,
		`data-button-reenable-after="1000"`,
		"Logged in as alice.",
		`action="/logout/"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestRender_ShowsQueuedFlashesOnce(t *testing.T) {
	sessions := &queuedFlashes{
		fakeSessions: newFakeSessions(),
		queued:       []session.Flash{{Style: session.FlashSuccess, Message: "Saved!"}},
	}
	views := newTestViews(t, sessions)

	render := func() string {
		rec := httptest.NewRecorder()
		views.Render(rec, getRequest("/login/", nil), http.StatusOK, "login.html", &Page{Title: "Log in"})
		return rec.Body.String()
	}

	first := render()
	if !strings.Contains(first, `class="alert alert-success"`) || !strings.Contains(first, "Saved!") {
		t.Errorf("expected the flash on the first render, body: %s", first)
	}
	if strings.Contains(render(), "Saved!") {
		t.Error("flashes are shown once")
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	views := newTestViews(t, newFakeSessions())
	rec := httptest.NewRecorder()
	views.Render(rec, getRequest("/", nil), http.StatusOK, "missing.html", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestRenderError_UnauthenticatedRedirects(t *testing.T) {
	views := newTestViews(t, newFakeSessions())
	rec := httptest.NewRecorder()
	views.RenderError(rec, getRequest("/profile/", nil), access.ErrUnauthenticated)

	assertLocation(t, rec, "/login/?next=%2Fprofile%2F")
}

func TestRenderError_ShowsProblem(t *testing.T) {
	views := newTestViews(t, newFakeSessions())
	rec := httptest.NewRecorder()
	views.RenderError(rec, getRequest("/post/x/", nil), model.NewNotFoundError("post"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "post not found") {
		t.Error("expected the problem detail on the page")
	}
}

func TestMarkdown_EscapesRawHTML(t *testing.T) {
	out := string(renderMarkdown("# Title\n\n<img src=x onerror=alert(1)>"))
	if !strings.Contains(out, "<h1>Title</h1>") {
		t.Errorf("expected heading, got %s", out)
	}
	if strings.Contains(out, "<img") {
		t.Errorf("raw HTML must be escaped, got %s", out)
	}
}
