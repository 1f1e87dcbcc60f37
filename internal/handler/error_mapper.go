package handler

import (
	"errors"
	"log/slog"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Validation problems returned by services pass through unchanged.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var problem *model.ProblemDetails
	if errors.As(err, &problem) {
		return problem
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		p := model.NewUnauthorizedError(err.Error())
		p.Code = model.ErrCodeLoginFailed
		return p
	case errors.Is(err, service.ErrInvalidToken):
		p := model.NewUnauthorizedError(err.Error())
		p.Code = model.ErrCodeTokenInvalid
		return p
	case errors.Is(err, access.ErrUnauthenticated):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotPostAuthor),
		errors.Is(err, service.ErrNotCommentAuthor):
		p := model.NewForbiddenError(err.Error())
		p.Code = model.ErrCodeNotAuthor
		return p
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, access.ErrPermissionDenied):
		p := model.NewForbiddenError("permission denied")
		p.Code = model.ErrCodeMissingPermission
		return p

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrBookNotFound):
		return model.NewNotFoundError("book")
	case errors.Is(err, service.ErrPostNotFound):
		return model.NewNotFoundError("post")
	case errors.Is(err, service.ErrCommentNotFound):
		return model.NewNotFoundError("comment")
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrPageNotFound):
		return model.NewNotFoundError("page")
	case errors.Is(err, database.ErrNotFound):
		return model.NewNotFoundError("record")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrBookTitleExists):
		p := model.NewConflictError(err.Error())
		p.Code = model.ErrCodeAlreadyExists
		p.Errors = []model.FieldError{{Field: "title", Message: err.Error()}}
		return p
	case errors.Is(err, service.ErrEmailAlreadyExists):
		p := model.NewConflictError(err.Error())
		p.Code = model.ErrCodeAlreadyExists
		p.Errors = []model.FieldError{{Field: "email", Message: "A user with this email already exists."}}
		return p
	case errors.Is(err, service.ErrUsernameTaken):
		p := model.NewConflictError(err.Error())
		p.Code = model.ErrCodeAlreadyExists
		p.Errors = []model.FieldError{{Field: "username", Message: "A user with that username already exists."}}
		return p
	case errors.Is(err, database.ErrDuplicate):
		return model.NewConflictError("record already exists")

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrBookTitleRequired):
		return model.NewValidationError([]model.FieldError{{Field: "title", Message: err.Error()}})
	case errors.Is(err, service.ErrEmptyBookUpdate):
		return model.NewValidationError([]model.FieldError{{Field: "body", Message: err.Error()}})
	case errors.Is(err, service.ErrSearchQueryTooShort):
		return model.NewValidationError([]model.FieldError{{Field: "q", Message: err.Error()}})
	case errors.Is(err, service.ErrTagRequired):
		return model.NewValidationError([]model.FieldError{{Field: "tag", Message: err.Error()}})
	case errors.Is(err, access.ErrInvalidRole):
		return model.NewValidationError([]model.FieldError{{Field: "groups", Message: err.Error()}})

	// ===== Default → 500 =====
	default:
		slog.Error("unmapped service error", slog.Any("error", err))
		return model.NewInternalError("")
	}
}
