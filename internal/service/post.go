package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/forgo/bookshelf/internal/model"
)

const searchResultLimit = 20

// PostRepository defines the interface for post storage
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, limit, offset int) ([]*model.Post, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, q string, limit int) ([]*model.Post, error)
	ListByTag(ctx context.Context, tag string) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

// PostService handles blog posts. Reading is open; changes are limited to
// the post's author.
type PostService struct {
	posts    PostRepository
	comments CommentRepository
}

// PostServiceConfig holds configuration for the post service
type PostServiceConfig struct {
	Posts    PostRepository
	Comments CommentRepository
}

// NewPostService creates a new post service
func NewPostService(cfg PostServiceConfig) *PostService {
	return &PostService{
		posts:    cfg.Posts,
		comments: cfg.Comments,
	}
}

// List returns one page of posts, newest first. Pages are numbered from 1;
// a page past the end is ErrPageNotFound.
func (s *PostService) List(ctx context.Context, page int) (*model.PostPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * model.PostsPageSize
	if page > 1 && offset >= total {
		return nil, ErrPageNotFound
	}

	posts, err := s.posts.List(ctx, model.PostsPageSize, offset)
	if err != nil {
		return nil, err
	}

	return &model.PostPage{
		Posts:    posts,
		Page:     page,
		Total:    total,
		PageSize: model.PostsPageSize,
	}, nil
}

// Get retrieves a post with its comments, oldest comment first
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

// Create validates the request and stores a post written by authorID
func (s *PostService) Create(ctx context.Context, authorID string, req *model.PostRequest) (*model.Post, error) {
	if authorID == "" {
		return nil, ErrUserNotFound
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	post := &model.Post{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		AuthorID: authorID,
		Tags:     req.TagList(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update changes title, content and tags. The lookup and the author check
// come before validation, so strangers get ErrNotPostAuthor for any payload.
func (s *PostService) Update(ctx context.Context, id, requesterID string, req *model.PostRequest) (*model.Post, error) {
	post, err := s.Authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Content = strings.TrimSpace(req.Content)
	post.Tags = req.TagList()

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.find(ctx, post.ID)
}

// ConfirmDelete runs the delete checks without changing anything and
// returns the post for the confirmation page
func (s *PostService) ConfirmDelete(ctx context.Context, id, requesterID string) (*model.Post, error) {
	return s.Authorize(ctx, id, requesterID)
}

// Delete removes the post and its comments
func (s *PostService) Delete(ctx context.Context, id, requesterID string) error {
	post, err := s.Authorize(ctx, id, requesterID)
	if err != nil {
		return err
	}
	return s.posts.Delete(ctx, post.ID)
}

// Search matches q against title, content and tags
func (s *PostService) Search(ctx context.Context, q string) ([]*model.Post, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < model.MinSearchQueryLength {
		return nil, ErrSearchQueryTooShort
	}
	return s.posts.Search(ctx, q, searchResultLimit)
}

// ListByTag returns the posts carrying tag. The tag is normalized the same
// way tags are when a post is saved.
func (s *PostService) ListByTag(ctx context.Context, tag string) ([]*model.Post, error) {
	normalized := model.NormalizeTag(tag)
	if normalized == "" {
		return nil, ErrTagRequired
	}
	return s.posts.ListByTag(ctx, normalized)
}

// ListByAuthor returns the posts written by a user
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

func (s *PostService) find(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Authorize loads the post and checks that requesterID wrote it. The edit
// page uses it to gate the form before anything is submitted.
func (s *PostService) Authorize(ctx context.Context, id, requesterID string) (*model.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthor(requesterID) {
		return nil, ErrNotPostAuthor
	}
	return post, nil
}
