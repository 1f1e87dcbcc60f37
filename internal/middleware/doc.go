// Package middleware provides HTTP middleware for the bookshelf server.
//
// Every middleware has the shape func(http.Handler) http.Handler and is
// composed with Chain:
//
//	handler := middleware.Chain(mux,
//		middleware.RequestID,
//		middleware.Logger,
//		middleware.Recovery,
//	)
//
// # Authentication
//
// Browser pages authenticate with a cookie session. Session loads the
// session user into the request context and RequireLogin redirects
// anonymous visitors to LoginPath with ?next= set:
//
//	mux.Handle("GET /post/new/", middleware.RequireLogin(h))
//
// The JSON API under /v1/ authenticates with bearer tokens via Auth or
// OptionalAuth. Both paths end with a *model.User in the context:
//
//	user := middleware.GetUser(r.Context())
//
// # Book Permissions
//
// RequirePermission and RequireAPIPermission consult a PermissionChecker
// (normally an *access.Gate) before the wrapped handler runs.
//
// # Rate Limiting
//
// RateLimit keys requests by user, or client IP when anonymous, plus path.
// The login form uses it to slow password guessing.
package middleware
