// Package handler provides the HTTP handlers of the bookshelf server.
//
// Two surfaces share the same services:
//
//   - HTML pages rendered from the embedded templates, authenticated by the
//     session cookie. Forms re-render with field errors; successful writes
//     redirect with a flash message.
//   - A JSON API under /v1/, authenticated by bearer token. Errors are
//     RFC 9457 Problem Details.
//
// # Handler Pattern
//
// Each handler has a constructor (NewXxxHandler) that accepts a config
// struct, and one method per endpoint. Service errors go through
// MapServiceError so pages and the API agree on status codes.
//
// # Routing
//
// Routes builds the complete router. Login and permission checks are route
// middleware; author checks live in the services.
//
//	h := handler.Routes(handler.RoutesConfig{
//	    Views: views,
//	    Posts: posts,
//	    Books: books,
//	    Gate:  gate,
//	})
package handler
