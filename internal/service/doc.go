// Package service implements the business logic layer of the bookshelf.
//
// Services own validation, ownership checks and the translation of storage
// results into domain errors. Handlers talk only to services.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods take a context.Context and return explicit errors
//   - Missing records surface as sentinel errors (ErrBookNotFound, ErrPostNotFound, ...)
//   - Invalid input surfaces as *model.ProblemDetails from model.NewValidationError
//
// # Repository Interfaces
//
// Services define the repository interfaces they need. The SurrealDB
// repositories in internal/repository satisfy them, and tests use
// map-backed mocks.
//
// # Ownership
//
// Posts and comments may only be changed by their author. PostService and
// CommentService look the record up first, then compare the author, then
// validate the payload:
//
//	post, err := posts.Update(ctx, postID, requesterID, &model.PostRequest{...})
//	switch {
//	case errors.Is(err, service.ErrPostNotFound):   // 404
//	case errors.Is(err, service.ErrNotPostAuthor):  // 403
//	}
//
// Book permissions are not checked here; the access gate guards the book
// routes before a BookService method is reached.
package service
