package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/forms"
	"github.com/forgo/bookshelf/internal/model"
)

// bcrypt cost factor (10-14 recommended for production)
const bcryptCost = 12

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateLastLogin(ctx context.Context, userID string) error
	SetGroups(ctx context.Context, userID string, groups []string) error
}

// AuthService handles accounts, credentials and profiles
type AuthService struct {
	userRepo     UserRepository
	gate         *access.Gate
	defaultGroup string
	cost         int
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo     UserRepository
	Gate         *access.Gate // Default: access.Default()
	DefaultGroup string       // Group given to new accounts. Default: Viewers
	BcryptCost   int          // Default: 12
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Gate == nil {
		cfg.Gate = access.Default()
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = access.RoleViewers
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcryptCost
	}

	return &AuthService{
		userRepo:     cfg.UserRepo,
		gate:         cfg.Gate,
		defaultGroup: cfg.DefaultGroup,
		cost:         cfg.BcryptCost,
	}
}

// Register creates an account from the sign-up form
func (s *AuthService) Register(ctx context.Context, form forms.RegisterForm) (*model.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	if errs := form.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	existing, err := s.userRepo.GetByUsername(ctx, form.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.userRepo.GetByEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := s.hashPassword(form.Password1)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, model.NewValidationError([]model.FieldError{
			{Field: "password1", Message: forms.MsgPasswordTooLong},
		})
	}
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: form.Username,
		Email:    form.Email,
		Hash:     &hash,
		Groups:   []string{s.defaultGroup},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translateUserError(err)
	}

	return user, nil
}

// Login checks a username and password pair
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Hash == nil || *user.Hash == "" {
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(password, *user.Hash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile saves the profile form. The email must not belong to
// another account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != user.Email {
		other, err := s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, ErrEmailAlreadyExists
		}
	}

	user.Email = req.Email
	user.Bio = strings.TrimSpace(req.Bio)
	user.Location = strings.TrimSpace(req.Location)
	user.Website = strings.TrimSpace(req.Website)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, translateUserError(err)
	}
	return s.GetUser(ctx, userID)
}

// SetGroups replaces a user's group memberships. Every group must be
// configured in the gate.
func (s *AuthService) SetGroups(ctx context.Context, userID string, groups []string) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	clean := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if !s.gate.HasRole(g) {
			return nil, fmt.Errorf("%w: unknown group %q", access.ErrInvalidRole, g)
		}
		clean = append(clean, g)
	}

	if err := s.userRepo.SetGroups(ctx, user.ID, clean); err != nil {
		return nil, err
	}
	user.Groups = clean
	return user, nil
}

// Helper functions

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// translateUserError maps unique index violations that slipped past the
// lookups (concurrent sign-ups) onto the service errors
func translateUserError(err error) error {
	if !errors.Is(err, database.ErrDuplicate) {
		return err
	}
	if strings.Contains(err.Error(), "username") {
		return ErrUsernameTaken
	}
	return ErrEmailAlreadyExists
}
