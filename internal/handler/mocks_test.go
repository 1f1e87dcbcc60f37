package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/forms"
	"github.com/forgo/bookshelf/internal/middleware"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/session"
)

// ============================================================================
// Fake Sessions
// ============================================================================

type fakeSessions struct {
	loggedIn  string
	loggedOut bool
	flashes   []session.Flash
	tokens    map[string]string
	loginErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: make(map[string]string)}
}

func (s *fakeSessions) Login(_ context.Context, userID string) error {
	if s.loginErr != nil {
		return s.loginErr
	}
	s.loggedIn = userID
	return nil
}

func (s *fakeSessions) Logout(context.Context) error {
	s.loggedOut = true
	s.loggedIn = ""
	return nil
}

func (s *fakeSessions) Flash(_ context.Context, style, message string) {
	s.flashes = append(s.flashes, session.Flash{Style: style, Message: message})
}

// PopFlashes leaves the queue in place for lastFlash
func (s *fakeSessions) PopFlashes(context.Context) []session.Flash {
	return nil
}

func (s *fakeSessions) IssueConfirmation(_ context.Context, target string) string {
	token := "tok-" + target
	s.tokens[target] = token
	return token
}

func (s *fakeSessions) Confirm(_ context.Context, target, token string) bool {
	want, ok := s.tokens[target]
	delete(s.tokens, target)
	return ok && token != "" && token == want
}

func (s *fakeSessions) UserID(context.Context) string {
	return s.loggedIn
}

func (s *fakeSessions) lastFlash() session.Flash {
	if len(s.flashes) == 0 {
		return session.Flash{}
	}
	return s.flashes[len(s.flashes)-1]
}

// ============================================================================
// Mock PostService
// ============================================================================

type mockPostService struct {
	listFunc          func(ctx context.Context, page int) (*model.PostPage, error)
	getFunc           func(ctx context.Context, id string) (*model.Post, error)
	createFunc        func(ctx context.Context, authorID string, req *model.PostRequest) (*model.Post, error)
	updateFunc        func(ctx context.Context, id, requesterID string, req *model.PostRequest) (*model.Post, error)
	authorizeFunc     func(ctx context.Context, id, requesterID string) (*model.Post, error)
	confirmDeleteFunc func(ctx context.Context, id, requesterID string) (*model.Post, error)
	deleteFunc        func(ctx context.Context, id, requesterID string) error
	searchFunc        func(ctx context.Context, q string) ([]*model.Post, error)
	listByTagFunc     func(ctx context.Context, tag string) ([]*model.Post, error)
	listByAuthorFunc  func(ctx context.Context, authorID string) ([]*model.Post, error)
}

func (m *mockPostService) List(ctx context.Context, page int) (*model.PostPage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, page)
	}
	return &model.PostPage{Page: page, PageSize: model.PostsPageSize}, nil
}

func (m *mockPostService) Get(ctx context.Context, id string) (*model.Post, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPostService) Create(ctx context.Context, authorID string, req *model.PostRequest) (*model.Post, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, authorID, req)
	}
	return nil, nil
}

func (m *mockPostService) Update(ctx context.Context, id, requesterID string, req *model.PostRequest) (*model.Post, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, requesterID, req)
	}
	return nil, nil
}

func (m *mockPostService) Authorize(ctx context.Context, id, requesterID string) (*model.Post, error) {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, id, requesterID)
	}
	return nil, nil
}

func (m *mockPostService) ConfirmDelete(ctx context.Context, id, requesterID string) (*model.Post, error) {
	if m.confirmDeleteFunc != nil {
		return m.confirmDeleteFunc(ctx, id, requesterID)
	}
	return nil, nil
}

func (m *mockPostService) Delete(ctx context.Context, id, requesterID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, requesterID)
	}
	return nil
}

func (m *mockPostService) Search(ctx context.Context, q string) ([]*model.Post, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, q)
	}
	return nil, nil
}

func (m *mockPostService) ListByTag(ctx context.Context, tag string) ([]*model.Post, error) {
	if m.listByTagFunc != nil {
		return m.listByTagFunc(ctx, tag)
	}
	return nil, nil
}

func (m *mockPostService) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	if m.listByAuthorFunc != nil {
		return m.listByAuthorFunc(ctx, authorID)
	}
	return nil, nil
}

// ============================================================================
// Mock BookService
// ============================================================================

type mockBookService struct {
	listFunc          func(ctx context.Context, filter model.BookFilter) (*model.BookPage, error)
	getFunc           func(ctx context.Context, id string) (*model.Book, error)
	createFunc        func(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error)
	updateFunc        func(ctx context.Context, id string, req *model.UpdateBookRequest) (*model.Book, error)
	updateByTitleFunc func(ctx context.Context, title string, req *model.UpdateBookRequest) (*model.Book, error)
	deleteFunc        func(ctx context.Context, id string) error
	deleteByTitleFunc func(ctx context.Context, title string) error
}

func (m *mockBookService) List(ctx context.Context, filter model.BookFilter) (*model.BookPage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return &model.BookPage{Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (m *mockBookService) Get(ctx context.Context, id string) (*model.Book, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookService) Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockBookService) Update(ctx context.Context, id string, req *model.UpdateBookRequest) (*model.Book, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *mockBookService) UpdateByTitle(ctx context.Context, title string, req *model.UpdateBookRequest) (*model.Book, error) {
	if m.updateByTitleFunc != nil {
		return m.updateByTitleFunc(ctx, title, req)
	}
	return nil, nil
}

func (m *mockBookService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookService) DeleteByTitle(ctx context.Context, title string) error {
	if m.deleteByTitleFunc != nil {
		return m.deleteByTitleFunc(ctx, title)
	}
	return nil
}

// ============================================================================
// Mock AuthService
// ============================================================================

type mockAuthService struct {
	registerFunc      func(ctx context.Context, form forms.RegisterForm) (*model.User, error)
	loginFunc         func(ctx context.Context, username, password string) (*model.User, error)
	getUserFunc       func(ctx context.Context, userID string) (*model.User, error)
	updateProfileFunc func(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, form forms.RegisterForm) (*model.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, form)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, nil
}

func (m *mockAuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, userID, req)
	}
	return nil, nil
}

// ============================================================================
// Mock CommentService
// ============================================================================

type mockCommentService struct {
	createFunc    func(ctx context.Context, postID, authorID string, req *model.CommentRequest) (*model.Comment, error)
	authorizeFunc func(ctx context.Context, id, requesterID string) (*model.Comment, error)
	updateFunc    func(ctx context.Context, id, requesterID string, req *model.CommentRequest) (*model.Comment, error)
	deleteFunc    func(ctx context.Context, id, requesterID string) (*model.Comment, error)
}

func (m *mockCommentService) Create(ctx context.Context, postID, authorID string, req *model.CommentRequest) (*model.Comment, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, postID, authorID, req)
	}
	return nil, nil
}

func (m *mockCommentService) Authorize(ctx context.Context, id, requesterID string) (*model.Comment, error) {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, id, requesterID)
	}
	return nil, nil
}

func (m *mockCommentService) Update(ctx context.Context, id, requesterID string, req *model.CommentRequest) (*model.Comment, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, requesterID, req)
	}
	return nil, nil
}

func (m *mockCommentService) Delete(ctx context.Context, id, requesterID string) (*model.Comment, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, requesterID)
	}
	return nil, nil
}

// ============================================================================
// Test Helpers
// ============================================================================

var (
	testAuthor = &model.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	testOther  = &model.User{ID: "u2", Username: "bob", Email: "bob@example.com"}
	testEditor = &model.User{ID: "u3", Username: "carol", Groups: []string{access.RoleEditors}}
)

func newTestViews(t *testing.T, sessions Sessions) *Views {
	t.Helper()
	views, err := NewViews(ViewsConfig{Sessions: sessions, Perms: access.Default()})
	if err != nil {
		t.Fatalf("failed to build views: %v", err)
	}
	return views
}

// formRequest builds a POST with an urlencoded body, optionally as user
func formRequest(path string, form url.Values, user *model.User) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

func getRequest(path string, user *model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

func assertLocation(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("expected Location %q, got %q", want, got)
	}
}
