package service

import (
	"fmt"

	"github.com/forgo/bookshelf/internal/model"
	"github.com/forgo/bookshelf/pkg/jwt"
)

// TokenService issues and validates API access tokens
type TokenService struct {
	jwtService *jwt.Service
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	JWTService *jwt.Service
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	return &TokenService{
		jwtService: cfg.JWTService,
	}
}

// IssueAccessToken signs a bearer token carrying the user's id and groups
func (s *TokenService) IssueAccessToken(user *model.User) (*model.TokenResponse, error) {
	token, err := s.jwtService.Sign(jwt.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Groups:   user.Groups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtService.GetExpiration().Seconds()),
	}, nil
}

// ValidateAccessToken checks a bearer token. Failures wrap ErrInvalidToken
// together with the jwt package error.
func (s *TokenService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	claims, err := s.jwtService.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
