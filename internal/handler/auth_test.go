package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/forgo/bookshelf/internal/forms"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/service"
	"github.com/forgo/bookshelf/internal/session"
	"github.com/forgo/bookshelf/internal/testing/helpers"
)

type stubTokens struct {
	issued *model.User
	err    error
}

func (s *stubTokens) IssueAccessToken(user *model.User) (*model.TokenResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.issued = user
	return &model.TokenResponse{AccessToken: "signed." + user.ID, TokenType: "Bearer", ExpiresIn: 900}, nil
}

func newTestAuthHandler(t *testing.T, auth *mockAuthService, posts AuthorPosts) (*AuthHandler, *fakeSessions, *stubTokens) {
	t.Helper()
	sessions := newFakeSessions()
	tokens := &stubTokens{}
	return NewAuthHandler(AuthHandlerConfig{
		Views:    newTestViews(t, sessions),
		Sessions: sessions,
		Auth:     auth,
		Tokens:   tokens,
		Posts:    posts,
	}), sessions, tokens
}

// ============================================================================
// Login / Logout
// ============================================================================

func TestAuthHandler_LoginPage_CarriesSafeNext(t *testing.T) {
	h, _, _ := newTestAuthHandler(t, &mockAuthService{}, nil)

	rec := httptest.NewRecorder()
	h.LoginPage(rec, getRequest("/login/?next=/post/new/", nil))
	if !strings.Contains(rec.Body.String(), `name="next" value="/post/new/"`) {
		t.Errorf("expected next to be carried, body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.LoginPage(rec, getRequest("/login/?next=https://evil.example/", nil))
	if !strings.Contains(rec.Body.String(), `name="next" value="/"`) {
		t.Error("expected a foreign next to fall back to /")
	}
}

func TestAuthHandler_LoginPage_LoggedInRedirects(t *testing.T) {
	h, _, _ := newTestAuthHandler(t, &mockAuthService{}, nil)

	rec := httptest.NewRecorder()
	h.LoginPage(rec, getRequest("/login/?next=/profile/", testAuthor))
	assertLocation(t, rec, "/profile/")
}

func TestAuthHandler_Login_Success(t *testing.T) {
	h, sessions, _ := newTestAuthHandler(t, &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*model.User, error) {
			if username != "alice" || password != " s3cret pass " {
				t.Errorf("unexpected credentials %q/%q", username, password)
			}
			return testAuthor, nil
		},
	}, nil)

	form := url.Values{"username": {"alice"}, "password": {" s3cret pass "}, "next": {"/post/new/"}}
	rec := httptest.NewRecorder()
	h.Login(rec, formRequest("/login/", form, nil))

	assertLocation(t, rec, "/post/new/")
	if sessions.loggedIn != testAuthor.ID {
		t.Errorf("expected session for %q, got %q", testAuthor.ID, sessions.loggedIn)
	}
	if f := sessions.lastFlash(); f.Message != "Welcome back, alice!" {
		t.Errorf("unexpected flash %+v", f)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h, sessions, _ := newTestAuthHandler(t, &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*model.User, error) {
			return nil, service.ErrInvalidCredentials
		},
	}, nil)

	form := url.Values{"username": {"alice"}, "password": {"wrong-password"}}
	rec := httptest.NewRecorder()
	h.Login(rec, formRequest("/login/", form, nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Please enter a correct username and password.") {
		t.Error("expected the non-field error")
	}
	if strings.Contains(body, "wrong-password") {
		t.Error("password must not be echoed")
	}
	if sessions.loggedIn != "" {
		t.Error("no session should be started")
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	called := false
	h, _, _ := newTestAuthHandler(t, &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*model.User, error) {
			called = true
			return nil, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.Login(rec, formRequest("/login/", url.Values{"username": {""}}, nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if called {
		t.Error("service should not be called with missing fields")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h, sessions, _ := newTestAuthHandler(t, &mockAuthService{}, nil)
	sessions.loggedIn = testAuthor.ID

	rec := httptest.NewRecorder()
	h.Logout(rec, formRequest("/logout/", url.Values{}, testAuthor))

	assertLocation(t, rec, "/")
	if !sessions.loggedOut {
		t.Error("expected the session to be cleared")
	}
	if f := sessions.lastFlash(); f.Style != session.FlashInfo || f.Message != "You have been logged out." {
		t.Errorf("unexpected flash %+v", f)
	}
}

// ============================================================================
// Registration
// ============================================================================

func TestAuthHandler_Register_LogsIn(t *testing.T) {
	var got forms.RegisterForm
	h, sessions, _ := newTestAuthHandler(t, &mockAuthService{
		registerFunc: func(ctx context.Context, form forms.RegisterForm) (*model.User, error) {
			got = form
			return &model.User{ID: "u9", Username: form.Username}, nil
		},
	}, nil)

	form := url.Values{
		"username":  {" <b>dave</b> "},
		"email":     {"dave@example.com"},
		"password1": {"Tr1cky pass!"},
		"password2": {"Tr1cky pass!"},
	}
	rec := httptest.NewRecorder()
	h.Register(rec, formRequest("/register/", form, nil))

	assertLocation(t, rec, "/profile/")
	if got.Username != "dave" {
		t.Errorf("expected sanitized username, got %q", got.Username)
	}
	if got.Password1 != "Tr1cky pass!" {
		t.Errorf("passwords must pass through untouched, got %q", got.Password1)
	}
	if sessions.loggedIn != "u9" {
		t.Errorf("expected new account logged in, got %q", sessions.loggedIn)
	}
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	h, _, _ := newTestAuthHandler(t, &mockAuthService{
		registerFunc: func(ctx context.Context, form forms.RegisterForm) (*model.User, error) {
			return nil, service.ErrUsernameTaken
		},
	}, nil)

	form := url.Values{
		"username":  {"alice"},
		"email":     {"alice2@example.com"},
		"password1": {"Tr1cky pass!"},
		"password2": {"Tr1cky pass!"},
	}
	rec := httptest.NewRecorder()
	h.Register(rec, formRequest("/register/", form, nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "A user with that username already exists.") {
		t.Error("expected the duplicate username message")
	}
	if strings.Contains(body, "Tr1cky pass!") {
		t.Error("passwords must not be echoed")
	}
	if !strings.Contains(body, `value="alice2@example.com"`) {
		t.Error("expected the email to be kept")
	}
}

// ============================================================================
// Profile
// ============================================================================

func TestAuthHandler_Profile_ListsOwnPosts(t *testing.T) {
	posts := &mockPostService{
		listByAuthorFunc: func(ctx context.Context, authorID string) ([]*model.Post, error) {
			if authorID != testAuthor.ID {
				t.Errorf("unexpected author %q", authorID)
			}
			return []*model.Post{samplePost()}, nil
		},
	}
	h, _, _ := newTestAuthHandler(t, &mockAuthService{
		getUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return testAuthor, nil
		},
	}, posts)

	rec := httptest.NewRecorder()
	h.Profile(rec, getRequest("/profile/", testAuthor))

	helpers.AssertStatus(t, rec, http.StatusOK)
	helpers.AssertBodyContains(t, rec, "First light", `value="alice@example.com"`)
}

func TestAuthHandler_UpdateProfile_ValidationKeepsValues(t *testing.T) {
	h, _, _ := newTestAuthHandler(t, &mockAuthService{
		getUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return testAuthor, nil
		},
		updateProfileFunc: func(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error) {
			return nil, model.NewValidationError([]model.FieldError{{Field: "website", Message: "Enter a valid URL."}})
		},
	}, nil)

	form := url.Values{"email": {"alice@example.com"}, "website": {"not a url"}}
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, formRequest("/profile/", form, testAuthor))

	helpers.AssertStatus(t, rec, http.StatusUnprocessableEntity)
	helpers.AssertBodyContains(t, rec, "Enter a valid URL.", `value="not a url"`)
}

// ============================================================================
// API Tokens
// ============================================================================

func TestAuthHandler_Token(t *testing.T) {
	h, _, tokens := newTestAuthHandler(t, &mockAuthService{
		loginFunc: func(ctx context.Context, username, password string) (*model.User, error) {
			return testEditor, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.Token(rec, apiRequest(http.MethodPost, "/v1/auth/token", `{"username":"carol","password":"whatever-it-is"}`))

	helpers.AssertStatus(t, rec, http.StatusOK)
	var resp model.TokenResponse
	helpers.DecodeResponse(t, rec, &resp)
	if resp.AccessToken != "signed.u3" || resp.TokenType != "Bearer" {
		t.Errorf("unexpected token response %+v", resp)
	}
	if tokens.issued != testEditor {
		t.Error("expected the token to be issued for the logged in user")
	}
}

func TestAuthHandler_Token_Failures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		loginErr error
		tokenErr error
		status   int
		code     model.ErrorCode
	}{
		{"bad json", `{"username":`, nil, nil, http.StatusBadRequest, model.ErrCodeInvalidInput},
		{"missing password", `{"username":"carol"}`, nil, nil, http.StatusUnprocessableEntity, model.ErrCodeValidation},
		{"wrong password", `{"username":"carol","password":"nope-nope"}`, service.ErrInvalidCredentials, nil, http.StatusUnauthorized, model.ErrCodeLoginFailed},
		{"signing fails", `{"username":"carol","password":"whatever-it-is"}`, nil, errors.New("no key"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, tokens := newTestAuthHandler(t, &mockAuthService{
				loginFunc: func(ctx context.Context, username, password string) (*model.User, error) {
					if tt.loginErr != nil {
						return nil, tt.loginErr
					}
					return testEditor, nil
				},
			}, nil)
			tokens.err = tt.tokenErr

			rec := httptest.NewRecorder()
			h.Token(rec, apiRequest(http.MethodPost, "/v1/auth/token", tt.body))

			helpers.AssertProblemDetails(t, rec, tt.status, tt.code)
		})
	}
}
