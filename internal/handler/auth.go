package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/bookshelf/internal/forms"
	"github.com/forgo/bookshelf/internal/middleware"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/service"
	"github.com/forgo/bookshelf/internal/session"
)

// AuthService defines the account operations the auth pages need
type AuthService interface {
	Register(ctx context.Context, form forms.RegisterForm) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error)
}

// TokenIssuer signs API access tokens
type TokenIssuer interface {
	IssueAccessToken(user *model.User) (*model.TokenResponse, error)
}

// AuthorPosts lists the posts shown on a profile page
type AuthorPosts interface {
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
}

// AuthHandler serves login, logout, registration and the profile page,
// plus the API token endpoint
type AuthHandler struct {
	views    *Views
	sessions Sessions
	auth     AuthService
	tokens   TokenIssuer
	posts    AuthorPosts
}

// AuthHandlerConfig holds dependencies for the auth handler
type AuthHandlerConfig struct {
	Views    *Views
	Sessions Sessions
	Auth     AuthService
	Tokens   TokenIssuer
	Posts    AuthorPosts
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		views:    cfg.Views,
		sessions: cfg.Sessions,
		auth:     cfg.Auth,
		tokens:   cfg.Tokens,
		posts:    cfg.Posts,
	}
}

// ============================================================================
// Login / Logout
// ============================================================================

// LoginPage handles GET /login/
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"), "/")
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.views.Render(w, r, http.StatusOK, "login.html", &Page{Title: "Log in", Next: next})
}

// Login handles POST /login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values, err := postedForm(r, "username", "password")
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}
	next := middleware.SafeNext(r.PostForm.Get("next"), "/")

	page := &Page{Title: "Log in", Form: values, Next: next}
	form := forms.LoginForm{Username: values["username"], Password: values["password"]}
	if errs := form.Validate(); len(errs) > 0 {
		page.Errors = model.NewValidationError(errs).FieldMessages()
		h.views.Render(w, r, http.StatusUnprocessableEntity, "login.html", page)
		return
	}

	user, err := h.auth.Login(r.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		page.NonField = "Please enter a correct username and password."
		page.Form["password"] = ""
		h.views.Render(w, r, http.StatusUnprocessableEntity, "login.html", page)
		return
	}
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}

	if err := h.sessions.Login(r.Context(), user.ID); err != nil {
		slog.Error("failed to start session", slog.String("user_id", user.ID), slog.Any("error", err))
		h.views.RenderError(w, r, err)
		return
	}
	h.views.redirect(w, r, next, session.FlashSuccess, "Welcome back, "+user.Username+"!")
}

// Logout handles POST /logout/
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.redirect(w, r, "/", session.FlashInfo, "You have been logged out.")
}

// ============================================================================
// Registration
// ============================================================================

// RegisterPage handles GET /register/
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "register.html", &Page{Title: "Register"})
}

// Register handles POST /register/. A new account is logged in right away.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	values, err := postedForm(r, "username", "email", "password1", "password2")
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}

	user, err := h.auth.Register(r.Context(), forms.RegisterForm{
		Username:  values["username"],
		Email:     values["email"],
		Password1: values["password1"],
		Password2: values["password2"],
	})
	if err != nil {
		status, fields, ok := formFailure(err)
		if !ok {
			h.views.RenderError(w, r, err)
			return
		}
		values["password1"], values["password2"] = "", ""
		h.views.Render(w, r, status, "register.html", &Page{Title: "Register", Form: values, Errors: fields})
		return
	}

	if err := h.sessions.Login(r.Context(), user.ID); err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.views.redirect(w, r, "/profile/", session.FlashSuccess, "Account created for "+user.Username+"!")
}

// ============================================================================
// Profile
// ============================================================================

type profileData struct {
	Account *model.User
	Posts   []*model.Post
}

// Profile handles GET /profile/
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.views.RenderError(w, r, err)
		return
	}
	h.renderProfile(w, r, http.StatusOK, user, profileForm(user), nil)
}

// UpdateProfile handles POST /profile/
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	values, err := postedForm(r, "email", "bio", "location", "website")
	if err != nil {
		h.views.RenderError(w, r, model.NewBadRequestError("invalid form data"))
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, &model.UpdateProfileRequest{
		Email:    values["email"],
		Bio:      values["bio"],
		Location: values["location"],
		Website:  values["website"],
	})
	if err != nil {
		status, fields, ok := formFailure(err)
		if !ok {
			h.views.RenderError(w, r, err)
			return
		}
		current, getErr := h.auth.GetUser(r.Context(), userID)
		if getErr != nil {
			h.views.RenderError(w, r, getErr)
			return
		}
		h.renderProfile(w, r, status, current, values, fields)
		return
	}

	h.views.redirect(w, r, "/profile/", session.FlashSuccess, "Your profile has been updated, "+user.Username+".")
}

func (h *AuthHandler) renderProfile(w http.ResponseWriter, r *http.Request, status int, user *model.User, values, fields map[string]string) {
	var posts []*model.Post
	if h.posts != nil {
		var err error
		posts, err = h.posts.ListByAuthor(r.Context(), user.ID)
		if err != nil {
			h.views.RenderError(w, r, err)
			return
		}
	}
	h.views.Render(w, r, status, "profile.html", &Page{
		Title:  "Profile",
		Form:   values,
		Errors: fields,
		Data:   profileData{Account: user, Posts: posts},
	})
}

func profileForm(u *model.User) map[string]string {
	return map[string]string{
		"email":    u.Email,
		"bio":      u.Bio,
		"location": u.Location,
		"website":  u.Website,
	}
}

// ============================================================================
// API Tokens
// ============================================================================

// Token handles POST /v1/auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req model.TokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	form := forms.LoginForm{Username: req.Username, Password: req.Password}
	if errs := form.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	token, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		slog.Error("failed to issue access token", slog.String("user_id", user.ID), slog.Any("error", err))
		WriteError(w, model.NewInternalError("failed to issue token"))
		return
	}

	WriteJSON(w, http.StatusOK, token)
}
