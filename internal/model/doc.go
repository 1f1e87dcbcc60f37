// Package model defines domain entities and data structures for the bookshelf service.
//
// The package holds the Book catalogue entry, blog Posts with their Comments,
// user accounts, the Book Permission enum, request payloads with their
// Validate methods, and the RFC 9457 ProblemDetails error model shared by
// every layer.
//
// # Validation
//
// Request types validate themselves and return one FieldError per problem:
//
//	if errs := req.Validate(); len(errs) > 0 {
//	    return nil, model.NewValidationError(errs)
//	}
//
// # Permissions
//
// Book permissions are an enumerated type. Codenames such as "can_edit" only
// appear when reading group configuration:
//
//	set := model.NewPermissionSet(model.PermissionView, model.PermissionEdit)
//	set.Has(model.PermissionDelete) // false
package model
