package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Post constraints
const (
	MinPostTitleLength   = 5
	MaxPostTitleLength   = 200
	MinPostContentLength = 20
	MaxPostContentLength = 20000
	MaxTagLength         = 50
	MaxTagsPerPost       = 10
	PostsPageSize        = 5
	MinSearchQueryLength = 2
)

var tagPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)

// Post is a blog entry owned by its author
type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	AuthorID     string     `json:"author_id"`
	AuthorName   string     `json:"author_name,omitempty"`
	Tags         []string   `json:"tags"`
	CommentCount int        `json:"comment_count"`
	Comments     []*Comment `json:"comments,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAuthor reports whether userID wrote the post
func (p *Post) IsAuthor(userID string) bool {
	return userID != "" && p.AuthorID == userID
}

// TagString joins the tags back into the form input format
func (p *Post) TagString() string {
	return strings.Join(p.Tags, ", ")
}

// PostPage is one page of the post listing
type PostPage struct {
	Posts    []*Post `json:"posts"`
	Page     int     `json:"page"`
	Total    int     `json:"total"`
	PageSize int     `json:"page_size"`
}

// HasPrevious reports whether a page precedes this one
func (p *PostPage) HasPrevious() bool {
	return p.Page > 1
}

// HasNext reports whether a page follows this one
func (p *PostPage) HasNext() bool {
	return p.Page*p.PageSize < p.Total
}

// PreviousPage returns the number of the page before this one
func (p *PostPage) PreviousPage() int {
	return p.Page - 1
}

// NextPage returns the number of the page after this one
func (p *PostPage) NextPage() int {
	return p.Page + 1
}

// PostRequest is the form payload for creating or editing a post.
// Tags arrive as a single comma separated string.
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// Validate validates the post form
func (r *PostRequest) Validate() []FieldError {
	var errors []FieldError

	title := strings.TrimSpace(r.Title)
	if title == "" {
		errors = append(errors, FieldError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(title) < MinPostTitleLength {
		errors = append(errors, FieldError{Field: "title", Message: "Title must be at least 5 characters long."})
	} else if utf8.RuneCountInString(title) > MaxPostTitleLength {
		errors = append(errors, FieldError{Field: "title", Message: "title must be 200 characters or less"})
	}

	content := strings.TrimSpace(r.Content)
	if content == "" {
		errors = append(errors, FieldError{Field: "content", Message: "content is required"})
	} else if utf8.RuneCountInString(content) < MinPostContentLength {
		errors = append(errors, FieldError{Field: "content", Message: "Content must be at least 20 characters long."})
	} else if utf8.RuneCountInString(content) > MaxPostContentLength {
		errors = append(errors, FieldError{Field: "content", Message: "content must be 20000 characters or less"})
	}

	tags := SplitTags(r.Tags)
	if len(tags) > MaxTagsPerPost {
		errors = append(errors, FieldError{Field: "tags", Message: fmt.Sprintf("a post can have at most %d tags", MaxTagsPerPost)})
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			errors = append(errors, FieldError{Field: "tags", Message: fmt.Sprintf("Tag '%s' is too long (maximum 50 characters).", tag)})
			break
		}
		if !tagPattern.MatchString(tag) {
			errors = append(errors, FieldError{Field: "tags", Message: fmt.Sprintf("Tag '%s' can only contain letters, numbers, spaces, hyphens, and underscores.", tag)})
			break
		}
	}

	return errors
}

// TagList returns the normalized, de-duplicated tags of the request
func (r *PostRequest) TagList() []string {
	return NormalizeTags(SplitTags(r.Tags))
}

// SplitTags splits a comma separated tag string, dropping empty entries
func SplitTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeTags case-folds tags and removes duplicates, keeping first-seen order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		folded := NormalizeTag(tag)
		if folded == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, folded)
	}
	return out
}

// NormalizeTag returns the canonical form of a single tag.
// A Caser is stateful, so each call gets its own.
func NormalizeTag(tag string) string {
	return cases.Fold().String(strings.Join(strings.Fields(tag), " "))
}
