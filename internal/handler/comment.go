package handler

import (
	"context"
	"net/http"

	"github.com/forgo/bookshelf/internal/middleware"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/session"
)

// CommentService defines the comment operations the pages need
type CommentService interface {
	Create(ctx context.Context, postID, authorID string, req *model.CommentRequest) (*model.Comment, error)
	Authorize(ctx context.Context, id, requesterID string) (*model.Comment, error)
	Update(ctx context.Context, id, requesterID string, req *model.CommentRequest) (*model.Comment, error)
	Delete(ctx context.Context, id, requesterID string) (*model.Comment, error)
}

// PostReader loads the post a comment form belongs to
type PostReader interface {
	Get(ctx context.Context, id string) (*model.Post, error)
}

// CommentHandler serves comment creation and the author-only edit and
// delete pages
type CommentHandler struct {
	views    *Views
	sessions Sessions
	comments CommentService
	posts    PostReader
}

// CommentHandlerConfig holds dependencies for the comment handler
type CommentHandlerConfig struct {
	Views    *Views
	Sessions Sessions
	Comments CommentService
	Posts    PostReader
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(cfg CommentHandlerConfig) *CommentHandler {
	return &CommentHandler{
		views:    cfg.Views,
		sessions: cfg.Sessions,
		comments: cfg.Comments,
		posts:    cfg.Posts,
	}
}

func commentPath(id string) string {
	return "/comment/" + model.RecordKey(id) + "/"
}

func commentTarget(id string) string {
	return "comment:" + model.RecordKey(id)
}

type commentFormData struct {
	Comment *model.Comment
	Action  string
	Cancel  string
}

// Create handles POST /post/{id}/comments/new/. An invalid comment re-renders
// the post page with the error under the comment box.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	postID := pathKey(r)
	values, err := postedForm(r, "content")
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}

	_, err = h.comments.Create(r.Context(), postID, middleware.GetUserID(r.Context()), &model.CommentRequest{Content: values["content"]})
	if err != nil {
		status, fields, ok := formFailure(err)
		if !ok {
			h.views.RenderError(w, r, err)
			return
		}
		post, getErr := h.posts.Get(r.Context(), postID)
		if getErr != nil {
			h.views.RenderError(w, r, getErr)
			return
		}
		h.views.Render(w, r, status, "post_detail.html", &Page{Title: post.Title, Form: values, Errors: fields, Data: post})
		return
	}
	h.views.redirect(w, r, postPath(postID), session.FlashSuccess, "Your comment has been added!")
}

// Edit handles GET /comment/{id}/edit/
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	comment, err := h.comments.Authorize(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "comment_form.html", &Page{
		Title: "Edit comment",
		Form:  map[string]string{"content": comment.Content},
		Data:  commentFormData{Comment: comment, Action: commentPath(id) + "edit/", Cancel: postPath(comment.PostID)},
	})
}

// Update handles POST /comment/{id}/edit/
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	userID := middleware.GetUserID(r.Context())
	values, err := postedForm(r, "content")
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}

	comment, err := h.comments.Update(r.Context(), id, userID, &model.CommentRequest{Content: values["content"]})
	if err != nil {
		status, fields, ok := formFailure(err)
		if !ok {
			h.views.RenderError(w, r, err)
			return
		}
		current, authErr := h.comments.Authorize(r.Context(), id, userID)
		if authErr != nil {
			h.views.RenderError(w, r, authErr)
			return
		}
		h.views.Render(w, r, status, "comment_form.html", &Page{
			Title:  "Edit comment",
			Form:   values,
			Errors: fields,
			Data:   commentFormData{Comment: current, Action: commentPath(id) + "edit/", Cancel: postPath(current.PostID)},
		})
		return
	}
	h.views.redirect(w, r, postPath(comment.PostID), session.FlashSuccess, "Your comment has been updated!")
}

// ConfirmDelete handles GET /comment/{id}/delete/
func (h *CommentHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	comment, err := h.comments.Authorize(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.Render(w, r, http.StatusOK, "confirm_delete.html", &Page{
		Title:   "Delete comment",
		Confirm: h.sessions.IssueConfirmation(r.Context(), commentTarget(id)),
		Data: confirmData{
			Kind:   "comment",
			Name:   comment.Content,
			Action: commentPath(id) + "delete/",
			Cancel: postPath(comment.PostID),
		},
	})
}

// Delete handles POST /comment/{id}/delete/
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathKey(r)
	userID := middleware.GetUserID(r.Context())

	if _, err := h.comments.Authorize(r.Context(), id, userID); err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	if !h.sessions.Confirm(r.Context(), commentTarget(id), r.PostFormValue("confirm")) {
		h.views.redirect(w, r, commentPath(id)+"delete/", session.FlashWarning, "Please confirm the deletion.")
		return
	}

	comment, err := h.comments.Delete(r.Context(), id, userID)
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.redirect(w, r, postPath(comment.PostID), session.FlashSuccess, "Your comment has been deleted.")
}
