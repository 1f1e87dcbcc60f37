package handler

import (
	"net/http"

	"github.com/forgo/bookshelf/internal/forms"
	"github.com/forgo/bookshelf/internal/model"
)

type passwordStrengthRequest struct {
	Password string `json:"password"`
}

type fieldCheckRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
	// Other is the value a confirmation field must match
	Other string `json:"other,omitempty"`
}

type fieldCheckResponse struct {
	Field string `json:"field"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// PasswordStrength handles POST /v1/forms/password-strength. It backs the
// strength meter on the registration page.
func PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req passwordStrengthRequest
	if !decodeBody(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, forms.Evaluate(req.Password))
}

// CheckField handles POST /v1/forms/check. It runs the live validation rule
// of a single registration or login field.
func CheckField(w http.ResponseWriter, r *http.Request) {
	var req fieldCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var msg string
	switch req.Field {
	case "password2":
		msg = forms.Check(req.Value, forms.Required, forms.Match(req.Other))
	default:
		rules, ok := forms.FieldRules[req.Field]
		if !ok {
			WriteError(w, model.NewValidationError([]model.FieldError{{Field: "field", Message: "unknown field " + req.Field}}))
			return
		}
		msg = forms.Check(req.Value, rules...)
	}

	WriteJSON(w, http.StatusOK, fieldCheckResponse{Field: req.Field, Valid: msg == "", Error: msg})
}
