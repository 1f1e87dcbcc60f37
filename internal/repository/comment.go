package repository

import (
	"context"
	"fmt"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
)

const commentProjection = `
	id, content, created_at, updated_at,
	post AS post_id,
	author AS author_id,
	author.username AS author_name
`

// CommentRepository handles comment data access
type CommentRepository struct {
	db database.Database
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db database.Database) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment on a post
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	postID, ok := scopedID(tablePost, comment.PostID)
	if !ok {
		return fmt.Errorf("%w: post %q", database.ErrNotFound, comment.PostID)
	}
	authorID, ok := scopedID(tableUser, comment.AuthorID)
	if !ok {
		return fmt.Errorf("%w: author %q", database.ErrNotFound, comment.AuthorID)
	}
	query := `
		LET $created = (CREATE comment CONTENT {
			post: type::record($post_id),
			author: type::record($author_id),
			content: $content
		});
		SELECT ` + commentProjection + ` FROM $created[0].id;
	`
	vars := map[string]interface{}{
		"post_id":   postID,
		"author_id": authorID,
		"content":   comment.Content,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := decodeRecord[model.Comment](lastRow(result))
	if err != nil {
		return err
	}
	*comment = *created
	return nil
}

// GetByID retrieves a comment by ID, nil when absent
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	rid, ok := scopedID(tableComment, id)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + commentProjection + ` FROM type::record($id)`
	vars := map[string]interface{}{"id": rid}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return notFoundAsNil[model.Comment](nil, err)
	}
	return notFoundAsNil[model.Comment](decodeRecord[model.Comment](result))
}

// ListByPost returns a post's comments oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	rid, ok := scopedID(tablePost, postID)
	if !ok {
		return []*model.Comment{}, nil
	}
	query := `SELECT ` + commentProjection + ` FROM comment WHERE post = type::record($post_id) ORDER BY created_at ASC`
	vars := map[string]interface{}{"post_id": rid}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Comment](statementRows(result, 0))
}

// Update persists the comment content
func (r *CommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	rid, ok := scopedID(tableComment, comment.ID)
	if !ok {
		return database.ErrNotFound
	}
	query := `UPDATE type::record($id) SET content = $content, updated_at = time::now()`
	vars := map[string]interface{}{
		"id":      rid,
		"content": comment.Content,
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	rid, ok := scopedID(tableComment, id)
	if !ok {
		return database.ErrNotFound
	}
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": rid}

	return r.db.Execute(ctx, query, vars)
}
