package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/repository"
)

// DefaultPassword is the plain-text password of every fixture user
const DefaultPassword = "testpass123"

// Factory creates test entities in the database
type Factory struct {
	users    *repository.UserRepository
	books    *repository.BookRepository
	posts    *repository.PostRepository
	comments *repository.CommentRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		users:    repository.NewUserRepository(db),
		books:    repository.NewBookRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
	}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email    string
	Username string
	Password string
	Groups   []string
}

// CreateUser creates a Viewers user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		Email:    fmt.Sprintf("user_%s@test.local", id),
		Username: fmt.Sprintf("user_%s", id),
		Password: DefaultPassword,
		Groups:   []string{access.RoleViewers},
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}
	h := string(hash)

	user := &model.User{
		Username: o.Username,
		Email:    o.Email,
		Hash:     &h,
		Groups:   o.Groups,
	}
	if err := f.users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// CreateEditor creates a member of Editors
func (f *Factory) CreateEditor(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Groups = []string{access.RoleEditors}
	})
}

// CreateAdmin creates a member of Admins
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Groups = []string{access.RoleAdmins}
	})
}

// ============================================================================
// Book Fixtures
// ============================================================================

// BookOpts customizes book creation
type BookOpts struct {
	Title           string
	Author          string
	PublicationYear int
}

// CreateBook creates a book with a unique title
func (f *Factory) CreateBook(t *testing.T, opts ...func(*BookOpts)) *model.Book {
	t.Helper()

	o := &BookOpts{
		Title:           fmt.Sprintf("Book %s", randomID()),
		Author:          "Test Author",
		PublicationYear: 1990,
	}
	for _, fn := range opts {
		fn(o)
	}

	book := &model.Book{
		Title:           o.Title,
		Author:          o.Author,
		PublicationYear: o.PublicationYear,
	}
	if err := f.books.Create(ctx(t), book); err != nil {
		t.Fatalf("fixtures: failed to create book: %v", err)
	}
	return book
}

// ============================================================================
// Post Fixtures
// ============================================================================

// PostOpts customizes post creation
type PostOpts struct {
	Title   string
	Content string
	Tags    []string
}

// CreatePost creates a post written by author
func (f *Factory) CreatePost(t *testing.T, author *model.User, opts ...func(*PostOpts)) *model.Post {
	t.Helper()

	o := &PostOpts{
		Title:   fmt.Sprintf("Post %s", randomID()),
		Content: "This is the body of a test post with enough text.",
		Tags:    []string{},
	}
	for _, fn := range opts {
		fn(o)
	}

	post := &model.Post{
		Title:    o.Title,
		Content:  o.Content,
		AuthorID: author.ID,
		Tags:     o.Tags,
	}
	if err := f.posts.Create(ctx(t), post); err != nil {
		t.Fatalf("fixtures: failed to create post: %v", err)
	}
	return post
}

// CreateComment creates a comment on post written by author
func (f *Factory) CreateComment(t *testing.T, post *model.Post, author *model.User) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  fmt.Sprintf("Comment %s", randomID()),
	}
	if err := f.comments.Create(ctx(t), comment); err != nil {
		t.Fatalf("fixtures: failed to create comment: %v", err)
	}
	return comment
}
