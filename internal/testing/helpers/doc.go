// Package helpers provides test utilities for handler and middleware tests.
//
// # JWT Helpers
//
// Sign bearer tokens for test users:
//
//	jh := helpers.NewJWTHelper(t)
//	req := helpers.NewRequest(t, "GET", "/v1/books").WithAuth(jh, user).Build()
//
// jh.Service validates the same tokens, so it can be handed to the code
// under test.
//
// # Form Requests
//
//	req := helpers.NewRequest(t, "POST", "/post/new/").
//	    WithForm(url.Values{"title": {"Hello world"}}).
//	    Build()
//
// # Assertion Helpers
//
//	helpers.AssertProblemDetails(t, rec, 404, model.ErrCodeNotFound)
//	helpers.AssertRedirect(t, rec, 303, "/login/?next=")
//	helpers.AssertBodyContains(t, rec, "Passwords do not match")
package helpers
