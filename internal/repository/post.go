package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
)

// postProjection flattens the author link and counts comments
const postProjection = `
	id, title, content, tags, created_at, updated_at,
	author AS author_id,
	author.username AS author_name,
	count((SELECT id FROM comment WHERE post = $parent.id)) AS comment_count
`

// PostRepository handles post data access
type PostRepository struct {
	db database.Database
}

// NewPostRepository creates a new post repository
func NewPostRepository(db database.Database) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post. created_at is assigned by the store.
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	authorID, ok := scopedID(tableUser, post.AuthorID)
	if !ok {
		return fmt.Errorf("%w: author %q", database.ErrNotFound, post.AuthorID)
	}
	query := `
		LET $created = (CREATE post CONTENT {
			title: $title,
			content: $content,
			author: type::record($author_id),
			tags: $tags
		});
		SELECT ` + postProjection + ` FROM $created[0].id;
	`
	vars := map[string]interface{}{
		"title":     post.Title,
		"content":   post.Content,
		"author_id": authorID,
		"tags":      nonNilTags(post.Tags),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := decodeRecord[model.Post](lastRow(result))
	if err != nil {
		return err
	}
	*post = *created
	return nil
}

// GetByID retrieves a post by ID, nil when absent
func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	rid, ok := scopedID(tablePost, id)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + postProjection + ` FROM type::record($id)`
	vars := map[string]interface{}{"id": rid}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return notFoundAsNil[model.Post](nil, err)
	}
	return notFoundAsNil[model.Post](decodeRecord[model.Post](result))
}

// List returns posts newest first
func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	query := `SELECT ` + postProjection + ` FROM post ORDER BY created_at DESC LIMIT $limit START $offset`
	vars := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Post](statementRows(result, 0))
}

// Count returns the number of posts
func (r *PostRepository) Count(ctx context.Context) (int, error) {
	result, err := r.db.Query(ctx, `SELECT count() AS count FROM post GROUP ALL`, nil)
	if err != nil {
		return 0, err
	}
	return extractCount(statementRows(result, 0)), nil
}

// Search matches the query against title, content and tags, case-insensitively
func (r *PostRepository) Search(ctx context.Context, q string, limit int) ([]*model.Post, error) {
	query := `
		SELECT ` + postProjection + ` FROM post
		WHERE string::lowercase(title) CONTAINS $q
			OR string::lowercase(content) CONTAINS $q
			OR tags CONTAINS $q
		ORDER BY created_at DESC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"q":     strings.ToLower(q),
		"limit": limit,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Post](statementRows(result, 0))
}

// ListByTag returns posts carrying the (already normalized) tag, newest first
func (r *PostRepository) ListByTag(ctx context.Context, tag string) ([]*model.Post, error) {
	query := `SELECT ` + postProjection + ` FROM post WHERE tags CONTAINS $tag ORDER BY created_at DESC`
	vars := map[string]interface{}{"tag": tag}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Post](statementRows(result, 0))
}

// ListByAuthor returns the posts written by a user, newest first
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	rid, ok := scopedID(tableUser, authorID)
	if !ok {
		return []*model.Post{}, nil
	}
	query := `SELECT ` + postProjection + ` FROM post WHERE author = type::record($author_id) ORDER BY created_at DESC`
	vars := map[string]interface{}{"author_id": rid}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Post](statementRows(result, 0))
}

// Update persists title, content and tags. Author and created_at never change.
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	rid, ok := scopedID(tablePost, post.ID)
	if !ok {
		return database.ErrNotFound
	}
	query := `
		UPDATE type::record($id) SET
			title = $title,
			content = $content,
			tags = $tags,
			updated_at = time::now()
	`
	vars := map[string]interface{}{
		"id":      rid,
		"title":   post.Title,
		"content": post.Content,
		"tags":    nonNilTags(post.Tags),
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete removes a post together with its comments in one transaction
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	rid, ok := scopedID(tablePost, id)
	if !ok {
		return database.ErrNotFound
	}
	vars := map[string]interface{}{"id": rid}

	err := database.NewAtomicBatch().
		Add(`DELETE comment WHERE post = type::record($id)`, vars).
		Add(`DELETE type::record($id)`, vars).
		Execute(ctx, r.db)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
