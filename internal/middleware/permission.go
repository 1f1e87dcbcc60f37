package middleware

import (
	"errors"
	"net/http"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/model"
)

// PermissionChecker decides whether a user holds a book permission
type PermissionChecker interface {
	Check(user *model.User, p model.Permission) error
}

// RequirePermission guards browser routes. Anonymous users are redirected
// to the login page; logged in users without p get forbidden, or a plain
// 403 when forbidden is nil.
func RequirePermission(gate PermissionChecker, p model.Permission, forbidden http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := gate.Check(GetUser(r.Context()), p)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, access.ErrUnauthenticated):
				RedirectToLogin(w, r)
			case forbidden != nil:
				forbidden.ServeHTTP(w, r)
			default:
				http.Error(w, "Forbidden", http.StatusForbidden)
			}
		})
	}
}

// RequireAPIPermission guards JSON routes with 401 and 403 problems
func RequireAPIPermission(gate PermissionChecker, p model.Permission) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := gate.Check(GetUser(r.Context()), p)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, access.ErrUnauthenticated):
				writeUnauthorized(w, model.NewUnauthorizedError("authentication required"))
			default:
				problem := model.NewForbiddenError("missing permission " + p.String())
				problem.Code = model.ErrCodeMissingPermission
				problem.WriteJSON(w)
			}
		})
	}
}
