package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/forgo/bookshelf/internal/model"
)

// LoginPath is where anonymous browser requests are sent
const LoginPath = "/login/"

// SessionReader exposes the logged in user id of the current session
type SessionReader interface {
	UserID(ctx context.Context) string
}

// UserLoader loads the account behind a session
type UserLoader interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// Session loads the session user into the request context. It must run
// inside the session manager's LoadAndSave. A session pointing at a deleted
// account is treated as anonymous.
func Session(sessions SessionReader, users UserLoader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessions.UserID(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil || user == nil {
				slog.Debug("session user not loaded",
					slog.String("user_id", userID),
					slog.Any("error", err),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page, remembering
// where they were going
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectToLogin sends a 303 to the login page with ?next= set to the
// current request. Non-GET requests return to the page that posted them.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.RequestURI()
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		if ref := sameOriginReferer(r); ref != "" {
			next = ref
		}
	}
	http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(next), http.StatusSeeOther)
}

func sameOriginReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return ""
	}
	return ref.RequestURI()
}

// SafeNext validates a ?next= target so login cannot redirect off site.
// Anything that is not a local absolute path becomes fallback.
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}
