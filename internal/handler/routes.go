package handler

import (
	"net/http"

	"github.com/forgo/bookshelf/internal/middleware"
	"github.com/forgo/bookshelf/internal/model"
)

// RoutesConfig wires the handlers behind their gates
type RoutesConfig struct {
	Views    *Views
	Auth     *AuthHandler
	Posts    *PostHandler
	Comments *CommentHandler
	Books    *BookHandler
	BooksAPI *BookAPIHandler

	Gate   middleware.PermissionChecker
	Tokens middleware.TokenValidator

	// LoginLimiter slows password guessing on the login form and the
	// token endpoint. Nil disables limiting.
	LoginLimiter *middleware.RateLimiter

	// LoadSession wraps every page, normally the session manager's LoadAndSave
	LoadSession  middleware.Middleware
	SessionUsers middleware.SessionReader
	Users        middleware.UserLoader

	DB             Pinger
	AllowedOrigins []string
}

// Routes builds the complete request router: HTML pages authenticated by
// session cookie, and the JSON API under /v1/ authenticated by bearer token.
func Routes(cfg RoutesConfig) http.Handler {
	root := http.NewServeMux()
	root.HandleFunc("GET /health", Health(cfg.DB))
	root.Handle("/v1/", middleware.CORS(cfg.AllowedOrigins)(apiRoutes(cfg)))

	pages := middleware.Session(cfg.SessionUsers, cfg.Users)(pageRoutes(cfg))
	if cfg.LoadSession != nil {
		pages = cfg.LoadSession(pages)
	}
	root.Handle("/", pages)

	return root
}

func (cfg RoutesConfig) limited(h http.HandlerFunc) http.Handler {
	if cfg.LoginLimiter == nil {
		return h
	}
	return middleware.RateLimit(cfg.LoginLimiter)(h)
}

func pageRoutes(cfg RoutesConfig) http.Handler {
	mux := http.NewServeMux()
	login := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireLogin(h)
	}
	can := func(p model.Permission, h http.HandlerFunc) http.Handler {
		return middleware.RequirePermission(cfg.Gate, p, cfg.Views.Forbidden())(h)
	}

	mux.HandleFunc("GET /{$}", cfg.Posts.Home)

	// Accounts
	mux.HandleFunc("GET /login/{$}", cfg.Auth.LoginPage)
	mux.Handle("POST /login/{$}", cfg.limited(cfg.Auth.Login))
	mux.Handle("POST /logout/{$}", login(cfg.Auth.Logout))
	mux.HandleFunc("GET /register/{$}", cfg.Auth.RegisterPage)
	mux.HandleFunc("POST /register/{$}", cfg.Auth.Register)
	mux.Handle("GET /profile/{$}", login(cfg.Auth.Profile))
	mux.Handle("POST /profile/{$}", login(cfg.Auth.UpdateProfile))

	// Blog
	mux.HandleFunc("GET /posts/{$}", cfg.Posts.List)
	mux.HandleFunc("GET /posts/search/{$}", cfg.Posts.Search)
	mux.HandleFunc("GET /tags/{tag}/{$}", cfg.Posts.Tag)
	mux.Handle("GET /post/new/{$}", login(cfg.Posts.New))
	mux.Handle("POST /post/new/{$}", login(cfg.Posts.Create))
	mux.HandleFunc("GET /post/{id}/{$}", cfg.Posts.Detail)
	mux.Handle("GET /post/{id}/edit/{$}", login(cfg.Posts.Edit))
	mux.Handle("POST /post/{id}/edit/{$}", login(cfg.Posts.Update))
	mux.Handle("GET /post/{id}/delete/{$}", login(cfg.Posts.ConfirmDelete))
	mux.Handle("POST /post/{id}/delete/{$}", login(cfg.Posts.Delete))
	mux.Handle("POST /post/{id}/comments/new/{$}", login(cfg.Comments.Create))
	mux.Handle("GET /comment/{id}/edit/{$}", login(cfg.Comments.Edit))
	mux.Handle("POST /comment/{id}/edit/{$}", login(cfg.Comments.Update))
	mux.Handle("GET /comment/{id}/delete/{$}", login(cfg.Comments.ConfirmDelete))
	mux.Handle("POST /comment/{id}/delete/{$}", login(cfg.Comments.Delete))

	// Catalogue
	mux.Handle("GET /books/{$}", can(model.PermissionView, cfg.Books.List))
	mux.Handle("GET /books/new/{$}", can(model.PermissionCreate, cfg.Books.New))
	mux.Handle("POST /books/new/{$}", can(model.PermissionCreate, cfg.Books.Create))
	mux.Handle("GET /books/{id}/edit/{$}", can(model.PermissionEdit, cfg.Books.Edit))
	mux.Handle("POST /books/{id}/edit/{$}", can(model.PermissionEdit, cfg.Books.Update))
	mux.Handle("GET /books/{id}/delete/{$}", can(model.PermissionDelete, cfg.Books.ConfirmDelete))
	mux.Handle("POST /books/{id}/delete/{$}", can(model.PermissionDelete, cfg.Books.Delete))

	mux.Handle("/", cfg.Views.NotFound())
	return mux
}

func apiRoutes(cfg RoutesConfig) http.Handler {
	mux := http.NewServeMux()
	can := func(p model.Permission, h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.Auth(cfg.Tokens),
			middleware.RequireAPIPermission(cfg.Gate, p),
		)
	}

	mux.Handle("POST /v1/auth/token", cfg.limited(cfg.Auth.Token))
	mux.HandleFunc("POST /v1/forms/password-strength", PasswordStrength)
	mux.HandleFunc("POST /v1/forms/check", CheckField)

	mux.Handle("GET /v1/books", can(model.PermissionView, cfg.BooksAPI.List))
	mux.Handle("POST /v1/books", can(model.PermissionCreate, cfg.BooksAPI.Create))
	mux.Handle("GET /v1/books/{id}", can(model.PermissionView, cfg.BooksAPI.Get))
	mux.Handle("PATCH /v1/books/{id}", can(model.PermissionEdit, cfg.BooksAPI.Update))
	mux.Handle("DELETE /v1/books/{id}", can(model.PermissionDelete, cfg.BooksAPI.Delete))
	mux.Handle("PATCH /v1/books/by-title/{title}", can(model.PermissionEdit, cfg.BooksAPI.UpdateByTitle))
	mux.Handle("DELETE /v1/books/by-title/{title}", can(model.PermissionDelete, cfg.BooksAPI.DeleteByTitle))

	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, model.NewNotFoundError("endpoint"))
	})
	return mux
}
