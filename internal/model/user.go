package model

import (
	"regexp"
	"slices"
	"time"
	"unicode/utf8"
)

// Profile constraints
const (
	MaxBioLength      = 500
	MaxLocationLength = 100
	MaxWebsiteLength  = 200
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks the address shape: something@something.tld without whitespace
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// User represents a user account
type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Hash        *string    `json:"-"` // Never expose password hash
	Bio         string     `json:"bio,omitempty"`
	Location    string     `json:"location,omitempty"`
	Website     string     `json:"website,omitempty"`
	Groups      []string   `json:"groups"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// InGroup reports whether the user is a member of the named group
func (u *User) InGroup(name string) bool {
	return slices.Contains(u.Groups, name)
}

// UpdateProfileRequest is the payload of the profile form
type UpdateProfileRequest struct {
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

// Validate validates the profile form
func (r *UpdateProfileRequest) Validate() []FieldError {
	var errors []FieldError
	if r.Email == "" {
		errors = append(errors, FieldError{Field: "email", Message: "email is required"})
	} else if !IsValidEmail(r.Email) {
		errors = append(errors, FieldError{Field: "email", Message: "Please enter a valid email address"})
	}
	if utf8.RuneCountInString(r.Bio) > MaxBioLength {
		errors = append(errors, FieldError{Field: "bio", Message: "bio must be 500 characters or less"})
	}
	if utf8.RuneCountInString(r.Location) > MaxLocationLength {
		errors = append(errors, FieldError{Field: "location", Message: "location must be 100 characters or less"})
	}
	if utf8.RuneCountInString(r.Website) > MaxWebsiteLength {
		errors = append(errors, FieldError{Field: "website", Message: "website must be 200 characters or less"})
	}
	return errors
}

// TokenRequest exchanges credentials for an API access token
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a signed access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
