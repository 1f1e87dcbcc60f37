package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/config"
	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/handler"
	"github.com/forgo/bookshelf/internal/middleware"
	"github.com/forgo/bookshelf/internal/repository"
	"github.com/forgo/bookshelf/internal/service"
	"github.com/forgo/bookshelf/internal/session"
	"github.com/forgo/bookshelf/pkg/jwt"
)

func main() {
	// Initialize structured logging
	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: &level,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.IsDevelopment() {
		level.Set(slog.LevelDebug)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Book permission groups
	gate, err := access.LoadGroups(cfg.Access.GroupsFile)
	if err != nil {
		slog.Error("failed to load permission groups", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Browser sessions
	sessions, err := session.New(session.Config{
		CookieName:  cfg.Session.CookieName,
		Lifetime:    cfg.Session.Lifetime,
		IdleTimeout: cfg.Session.IdleTimeout,
		Secure:      cfg.Session.Secure,
		StoreURL:    cfg.Session.StoreURL,
	})
	if err != nil {
		slog.Error("failed to initialize sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = sessions.Close() }()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
	})
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		Gate:         gate,
		DefaultGroup: cfg.Access.DefaultGroup,
		BcryptCost:   cfg.Access.BcryptCost,
	})
	bookService := service.NewBookService(service.BookServiceConfig{Repo: bookRepo})
	postService := service.NewPostService(service.PostServiceConfig{
		Posts:    postRepo,
		Comments: commentRepo,
	})
	commentService := service.NewCommentService(service.CommentServiceConfig{
		Comments: commentRepo,
		Posts:    postRepo,
	})

	// Initialize handlers
	views, err := handler.NewViews(handler.ViewsConfig{
		Sessions: sessions,
		Perms:    gate,
	})
	if err != nil {
		slog.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var loginLimiter *middleware.RateLimiter
	if cfg.RateLimit.Attempts > 0 {
		loginLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:   cfg.RateLimit.Attempts,
			Window: cfg.RateLimit.Window,
			Burst:  cfg.RateLimit.Burst,
		})
		defer loginLimiter.Stop()
	}

	routes := handler.Routes(handler.RoutesConfig{
		Views: views,
		Auth: handler.NewAuthHandler(handler.AuthHandlerConfig{
			Views:    views,
			Sessions: sessions,
			Auth:     authService,
			Tokens:   tokenService,
			Posts:    postService,
		}),
		Posts: handler.NewPostHandler(handler.PostHandlerConfig{
			Views:    views,
			Sessions: sessions,
			Posts:    postService,
		}),
		Comments: handler.NewCommentHandler(handler.CommentHandlerConfig{
			Views:    views,
			Sessions: sessions,
			Comments: commentService,
			Posts:    postService,
		}),
		Books: handler.NewBookHandler(handler.BookHandlerConfig{
			Views:    views,
			Sessions: sessions,
			Books:    bookService,
		}),
		BooksAPI: handler.NewBookAPIHandler(bookService),

		Gate:         gate,
		Tokens:       tokenService,
		LoginLimiter: loginLimiter,

		LoadSession:  sessions.LoadAndSave,
		SessionUsers: sessions,
		Users:        authService,

		DB:             db,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Apply global middleware
	wrapped := middleware.Chain(
		routes,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("base_url", cfg.Server.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
