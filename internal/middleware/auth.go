package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/pkg/jwt"
)

// TokenValidator defines the interface for token validation
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// Auth returns a middleware that requires a valid bearer token. The token's
// user is placed in the request context.
func Auth(tokens TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, model.NewUnauthorizedError("missing authorization header"))
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				writeUnauthorized(w, model.NewUnauthorizedError("invalid authorization header format"))
				return
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				problem := model.NewUnauthorizedError("invalid token")
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					problem.Detail = "token expired"
					problem.Code = model.ErrCodeTokenExpired
				case errors.Is(err, jwt.ErrInvalidSignature):
					problem.Detail = "invalid token signature"
					problem.Code = model.ErrCodeTokenInvalid
				default:
					problem.Code = model.ErrCodeTokenInvalid
				}
				writeUnauthorized(w, problem)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth is like Auth but doesn't require authentication.
// It will set the user in context if a token is present and valid.
func OptionalAuth(tokens TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				// Invalid token, but optional so continue without auth
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func writeUnauthorized(w http.ResponseWriter, problem *model.ProblemDetails) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="bookshelf"`)
	problem.WriteJSON(w)
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return WithUser(ctx, &model.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Groups:   claims.Groups,
	})
}

// WithUser stores the request user in the context
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser extracts the request user from context, nil when anonymous
func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserKey).(*model.User); ok {
		return user
	}
	return nil
}

// GetUserID extracts the user ID from context
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

// GetClaims extracts the JWT claims from context
func GetClaims(ctx context.Context) *jwt.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
