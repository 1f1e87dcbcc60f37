package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Comment constraints
const (
	MinCommentLength = 2
	MaxCommentLength = 1000
)

// Comment is a reply to a post
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAuthor reports whether userID wrote the comment
func (c *Comment) IsAuthor(userID string) bool {
	return userID != "" && c.AuthorID == userID
}

// CommentRequest is the form payload for a comment
type CommentRequest struct {
	Content string `json:"content"`
}

// Validate validates the comment; content is measured after trimming
func (r *CommentRequest) Validate() []FieldError {
	var errors []FieldError
	content := strings.TrimSpace(r.Content)
	if utf8.RuneCountInString(content) < MinCommentLength {
		errors = append(errors, FieldError{Field: "content", Message: "Comment must be at least 2 characters long."})
	} else if utf8.RuneCountInString(r.Content) > MaxCommentLength {
		errors = append(errors, FieldError{Field: "content", Message: "Comment cannot exceed 1000 characters."})
	}
	return errors
}
