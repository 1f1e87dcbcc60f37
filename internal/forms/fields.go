package forms

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forgo/bookshelf/internal/model"
)

// Field rules shared by the register, login and profile forms
const (
	MinUsernameLength = 3
	MaxUsernameLength = 150
	MinPasswordLength = 8
	// bcrypt refuses longer input
	MaxPasswordBytes = 72
)

// Messages surfaced next to invalid fields
const (
	MsgRequired         = "This field is required"
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgUsernameTooShort = "Username must be at least 3 characters long"
	MsgUsernameTooLong  = "Username must be 150 characters or less"
	MsgUsernameCharset  = "Username can only contain letters, numbers, and underscores"
	MsgPasswordTooShort = "Password must be at least 8 characters long"
	MsgPasswordTooLong  = "Password must be 72 bytes or less"
	MsgPasswordMismatch = "Passwords do not match"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Rule checks one field value and returns a message, or "" when valid
type Rule func(value string) string

// Required rejects empty or whitespace-only values
func Required(value string) string {
	if strings.TrimSpace(value) == "" {
		return MsgRequired
	}
	return ""
}

// Email checks the address shape
func Email(value string) string {
	if !model.IsValidEmail(value) {
		return MsgInvalidEmail
	}
	return ""
}

// Username checks length and charset
func Username(value string) string {
	n := utf8.RuneCountInString(value)
	switch {
	case n < MinUsernameLength:
		return MsgUsernameTooShort
	case n > MaxUsernameLength:
		return MsgUsernameTooLong
	case !usernamePattern.MatchString(value):
		return MsgUsernameCharset
	}
	return ""
}

// Password checks the length bounds. The minimum counts characters, the
// maximum counts encoded bytes.
func Password(value string) string {
	switch {
	case utf8.RuneCountInString(value) < MinPasswordLength:
		return MsgPasswordTooShort
	case len(value) > MaxPasswordBytes:
		return MsgPasswordTooLong
	}
	return ""
}

// Match returns a rule that requires the value to equal other
func Match(other string) Rule {
	return func(value string) string {
		if value != other {
			return MsgPasswordMismatch
		}
		return ""
	}
}

// Check applies rules in order and returns the first failure
func Check(value string, rules ...Rule) string {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			return msg
		}
	}
	return ""
}

// Errors accumulates at most one message per field
type Errors []model.FieldError

// Add runs the rules against value and records the first failure for field
func (e *Errors) Add(field, value string, rules ...Rule) {
	if msg := Check(value, rules...); msg != "" {
		*e = append(*e, model.FieldError{Field: field, Message: msg})
	}
}

// Has reports whether field already has an error
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// RegisterForm is the sign-up form
type RegisterForm struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// Validate returns one error per invalid field. Any error blocks submission.
func (f *RegisterForm) Validate() []model.FieldError {
	var errs Errors
	errs.Add("username", f.Username, Required, Username)
	errs.Add("email", f.Email, Required, Email)
	errs.Add("password1", f.Password1, Required, Password)
	errs.Add("password2", f.Password2, Required, Match(f.Password1))
	return errs
}

// LoginForm is the sign-in form
type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate only checks presence; credentials are verified by the auth service
func (f *LoginForm) Validate() []model.FieldError {
	var errs Errors
	errs.Add("username", f.Username, Required)
	errs.Add("password", f.Password, Required)
	return errs
}

// FieldRules maps form field names onto the rules applied while typing.
// Confirmation fields are handled separately because they depend on another value.
var FieldRules = map[string][]Rule{
	"username":  {Required, Username},
	"email":     {Required, Email},
	"password":  {Required},
	"password1": {Required, Password},
}
