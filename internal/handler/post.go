package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/forgo/bookshelf/internal/middleware"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/service"
	"github.com/forgo/bookshelf/internal/session"
)

// PostService defines the blog operations the post pages need
type PostService interface {
	List(ctx context.Context, page int) (*model.PostPage, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, authorID string, req *model.PostRequest) (*model.Post, error)
	Update(ctx context.Context, id, requesterID string, req *model.PostRequest) (*model.Post, error)
	Authorize(ctx context.Context, id, requesterID string) (*model.Post, error)
	ConfirmDelete(ctx context.Context, id, requesterID string) (*model.Post, error)
	Delete(ctx context.Context, id, requesterID string) error
	Search(ctx context.Context, q string) ([]*model.Post, error)
	ListByTag(ctx context.Context, tag string) ([]*model.Post, error)
}

// PostHandler serves the blog pages
type PostHandler struct {
	views    *Views
	sessions Sessions
	posts    PostService
}

// PostHandlerConfig holds dependencies for the post handler
type PostHandlerConfig struct {
	Views    *Views
	Sessions Sessions
	Posts    PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(cfg PostHandlerConfig) *PostHandler {
	return &PostHandler{
		views:    cfg.Views,
		sessions: cfg.Sessions,
		posts:    cfg.Posts,
	}
}

var postFields = []string{"title", "content", "tags"}

func postPath(id string) string {
	return "/post/" + model.RecordKey(id) + "/"
}

func postTarget(id string) string {
	return "post:" + model.RecordKey(id)
}

// ============================================================================
// Listing
// ============================================================================

// Home handles GET /
func (h *PostHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), 1)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "home.html", &Page{Title: "Home", Data: page})
}

// List handles GET /posts/?page=N
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	n := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil || n < 1 {
			h.views.RenderError(w, r, service.ErrPageNotFound)
			return
		}
	}

	page, err := h.posts.List(r.Context(), n)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "post_list.html", &Page{Title: "Posts", Data: page})
}

type postResults struct {
	Heading string
	Query   string
	Posts   []*model.Post
}

// Search handles GET /posts/search/?q=
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	page := &Page{Title: "Search", Form: map[string]string{"q": q}}

	posts, err := h.posts.Search(r.Context(), q)
	if errors.Is(err, service.ErrSearchQueryTooShort) {
		page.Errors = map[string]string{"q": "Search query must be at least 2 characters long."}
		page.Data = postResults{Heading: "Search", Query: q}
		h.views.Render(w, r, http.StatusOK, "post_results.html", page)
		return
	}
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}

	page.Data = postResults{Heading: "Search results for \"" + q + "\"", Query: q, Posts: posts}
	h.views.Render(w, r, http.StatusOK, "post_results.html", page)
}

// Tag handles GET /tags/{tag}/
func (h *PostHandler) Tag(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	posts, err := h.posts.ListByTag(r.Context(), tag)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "post_results.html", &Page{
		Title: "Tag " + tag,
		Data:  postResults{Heading: "Posts tagged \"" + model.NormalizeTag(tag) + "\"", Posts: posts},
	})
}

// Detail handles GET /post/{id}/
func (h *PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), pathKey(r))
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "post_detail.html", &Page{Title: post.Title, Data: post})
}

// ============================================================================
// Create / Update
// ============================================================================

type postFormData struct {
	Post   *model.Post
	Action string
}

// New handles GET /post/new/
func (h *PostHandler) New(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "post_form.html", &Page{
		Title: "New post",
		Data:  postFormData{Action: "/post/new/"},
	})
}

// Create handles POST /post/new/
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	values, err := postedForm(r, postFields...)
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}

	post, err := h.posts.Create(r.Context(), middleware.GetUserID(r.Context()), postRequest(values))
	if err != nil {
		h.formError(w, r, err, "New post", values, postFormData{Action: "/post/new/"})
		return
	}
	h.views.redirect(w, r, postPath(post.ID), session.FlashSuccess, "Your post has been created!")
}

// Edit handles GET /post/{id}/edit/
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	post, err := h.posts.Authorize(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "post_form.html", &Page{
		Title: "Edit post",
		Form:  map[string]string{"title": post.Title, "content": post.Content, "tags": post.TagString()},
		Data:  postFormData{Post: post, Action: postPath(id) + "edit/"},
	})
}

// Update handles POST /post/{id}/edit/
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	values, err := postedForm(r, postFields...)
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}

	post, err := h.posts.Update(r.Context(), id, middleware.GetUserID(r.Context()), postRequest(values))
	if err != nil {
		h.formError(w, r, err, "Edit post", values, postFormData{Action: postPath(id) + "edit/"})
		return
	}
	h.views.redirect(w, r, postPath(post.ID), session.FlashSuccess, "Your post has been updated!")
}

func (h *PostHandler) formError(w http.ResponseWriter, r *http.Request, err error, title string, values map[string]string, data postFormData) {
	status, fields, ok := formFailure(err)
	if !ok {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, status, "post_form.html", &Page{Title: title, Form: values, Errors: fields, Data: data})
}

func postRequest(values map[string]string) *model.PostRequest {
	return &model.PostRequest{
		Title:   values["title"],
		Content: values["content"],
		Tags:    values["tags"],
	}
}

// ============================================================================
// Delete
// ============================================================================

// ConfirmDelete handles GET /post/{id}/delete/
func (h *PostHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	post, err := h.posts.ConfirmDelete(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "confirm_delete.html", &Page{
		Title:   "Delete post",
		Confirm: h.sessions.IssueConfirmation(r.Context(), postTarget(id)),
		Data: confirmData{
			Kind:   "post",
			Name:   post.Title,
			Action: postPath(id) + "delete/",
			Cancel: postPath(id),
		},
	})
}

// Delete handles POST /post/{id}/delete/. The confirmation token from the
// confirmation page must be presented.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	userID := middleware.GetUserID(r.Context())

	// Author checks run before the token is consumed
	if _, err := h.posts.Authorize(r.Context(), id, userID); err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	if !h.sessions.Confirm(r.Context(), postTarget(id), r.PostFormValue("confirm")) {
		h.views.redirect(w, r, postPath(id)+"delete/", session.FlashWarning, "Please confirm the deletion.")
		return
	}

	if err := h.posts.Delete(r.Context(), id, userID); err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.redirect(w, r, "/posts/", session.FlashSuccess, "Your post has been deleted.")
}

// confirmData describes what a confirmation page is about to delete
type confirmData struct {
	Kind   string
	Name   string
	Action string
	Cancel string
}
