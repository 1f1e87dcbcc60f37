package service

import (
	"context"
	"strings"

	"github.com/forgo/bookshelf/internal/model"
)

// CommentRepository defines the interface for comment storage
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id string) error
}

// CommentService handles comments on posts
type CommentService struct {
	comments CommentRepository
	posts    PostRepository
}

// CommentServiceConfig holds configuration for the comment service
type CommentServiceConfig struct {
	Comments CommentRepository
	Posts    PostRepository
}

// NewCommentService creates a new comment service
func NewCommentService(cfg CommentServiceConfig) *CommentService {
	return &CommentService{
		comments: cfg.Comments,
		posts:    cfg.Posts,
	}
}

// Create adds a comment by authorID to an existing post
func (s *CommentService) Create(ctx context.Context, postID, authorID string, req *model.CommentRequest) (*model.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	comment := &model.Comment{
		PostID:   post.ID,
		AuthorID: authorID,
		Content:  strings.TrimSpace(req.Content),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Get retrieves a comment by ID
func (s *CommentService) Get(ctx context.Context, id string) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// Authorize returns the comment when requesterID wrote it
func (s *CommentService) Authorize(ctx context.Context, id, requesterID string) (*model.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.IsAuthor(requesterID) {
		return nil, ErrNotCommentAuthor
	}
	return comment, nil
}

// Update replaces the comment content
func (s *CommentService) Update(ctx context.Context, id, requesterID string, req *model.CommentRequest) (*model.Comment, error) {
	comment, err := s.Authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	comment.Content = strings.TrimSpace(req.Content)
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the comment and returns it so callers can redirect to its post
func (s *CommentService) Delete(ctx context.Context, id, requesterID string) (*model.Comment, error) {
	comment, err := s.Authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}
