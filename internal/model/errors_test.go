package model

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// ProblemDetails Tests
// ============================================================================

func TestProblemDetails_Error_ContainsStatusTitleDetail(t *testing.T) {
	t.Parallel()

	pd := NewNotFoundError("book")
	msg := pd.Error()

	for _, want := range []string{"404", "Not Found", "book not found"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q should contain %q", msg, want)
		}
	}
}

func TestProblemDetails_WriteJSON(t *testing.T) {
	t.Parallel()

	pd := NewForbiddenError("not your post")
	rr := httptest.NewRecorder()

	pd.WriteJSON(rr)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected Content-Type application/problem+json, got %q", ct)
	}

	var result ProblemDetails
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if result.Detail != "not your post" {
		t.Errorf("expected detail 'not your post', got %q", result.Detail)
	}
	if result.Code != ErrCodeForbidden {
		t.Errorf("expected code %d, got %d", ErrCodeForbidden, result.Code)
	}
}

func TestProblemDetails_FieldMessages_KeepsFirstPerField(t *testing.T) {
	t.Parallel()

	pd := NewValidationError([]FieldError{
		{Field: "title", Message: "first"},
		{Field: "title", Message: "second"},
		{Field: "content", Message: "too short"},
	})

	msgs := pd.FieldMessages()
	if msgs["title"] != "first" {
		t.Errorf("expected first title message, got %q", msgs["title"])
	}
	if msgs["content"] != "too short" {
		t.Errorf("expected content message, got %q", msgs["content"])
	}
	if !pd.IsValidation() {
		t.Error("expected validation problem")
	}
}

// ============================================================================
// Constructor Tests
// ============================================================================

func TestConstructors_StatusAndType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		pd     *ProblemDetails
		status int
		slug   string
	}{
		{"unauthorized", NewUnauthorizedError("login required"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", NewForbiddenError("denied"), http.StatusForbidden, "forbidden"},
		{"not found", NewNotFoundError("post"), http.StatusNotFound, "not-found"},
		{"validation", NewValidationError(nil), http.StatusUnprocessableEntity, "validation"},
		{"conflict", NewConflictError("duplicate"), http.StatusConflict, "conflict"},
		{"internal", NewInternalError(""), http.StatusInternalServerError, "internal"},
		{"bad request", NewBadRequestError("bad"), http.StatusBadRequest, "bad-request"},
		{"rate limited", NewRateLimitError(30), http.StatusTooManyRequests, "rate-limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.pd.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.pd.Status)
			}
			if !strings.HasSuffix(tt.pd.Type, "/"+tt.slug) {
				t.Errorf("expected type ending in %q, got %q", tt.slug, tt.pd.Type)
			}
		})
	}
}

func TestNewValidationError_SummarizesCount(t *testing.T) {
	t.Parallel()

	pd := NewValidationError([]FieldError{
		{Field: "title", Message: "too short"},
		{Field: "content", Message: "too short"},
		{Field: "tags", Message: "bad tag"},
	})

	if !strings.Contains(pd.Detail, "title: too short") {
		t.Errorf("expected detail to lead with the first error, got %q", pd.Detail)
	}
	if !strings.Contains(pd.Detail, "2 more errors") {
		t.Errorf("expected detail to count remaining errors, got %q", pd.Detail)
	}
	if len(pd.Errors) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(pd.Errors))
	}
}

func TestNewValidationError_EmptyErrors_DefaultMessage(t *testing.T) {
	t.Parallel()

	pd := NewValidationError(nil)
	if pd.Detail != "One or more fields failed validation" {
		t.Errorf("unexpected default detail %q", pd.Detail)
	}
}

func TestNewInternalError_EmptyDetail_UsesDefault(t *testing.T) {
	t.Parallel()

	pd := NewInternalError("")
	if pd.Detail != "An unexpected error occurred" {
		t.Errorf("unexpected default detail %q", pd.Detail)
	}
}

func TestNewRateLimitError_MentionsRetry(t *testing.T) {
	t.Parallel()

	pd := NewRateLimitError(42)
	if !strings.Contains(pd.Detail, "42 seconds") {
		t.Errorf("expected retry hint, got %q", pd.Detail)
	}
}
