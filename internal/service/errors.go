package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here so handlers can
// map them with errors.Is.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid access token")
)

// ===== Book Errors =====
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookTitleExists   = errors.New("a book with this title already exists")
	ErrBookTitleRequired = errors.New("book title is required")
	ErrEmptyBookUpdate   = errors.New("no book fields to update")
)

// ===== Post Errors =====
var (
	ErrPostNotFound        = errors.New("post not found")
	ErrNotPostAuthor       = errors.New("only the author can change this post")
	ErrSearchQueryTooShort = errors.New("search query must be at least 2 characters")
	ErrTagRequired         = errors.New("tag is required")
	ErrPageNotFound        = errors.New("page not found")
)

// ===== Comment Errors =====
var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotCommentAuthor = errors.New("only the author can change this comment")
)

// ===== Permission Errors =====
var (
	ErrPermissionDenied = errors.New("permission denied")
)
