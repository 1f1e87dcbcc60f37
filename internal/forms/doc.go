// Package forms holds the form rules shared by the server-rendered pages and
// the browser-side enhancer: password strength scoring, per-field validation,
// input sanitizing, and a Component that models a form page reacting to
// input, submit, visibility-toggle and alert events.
//
// Password strength adds one point per satisfied check (length >= 8,
// length >= 12, lowercase, uppercase, digit, symbol):
//
//	forms.Rate("abc")          // weak
//	forms.Rate("Abcdef12")     // medium
//	forms.Rate("Abcdef12!@#$") // strong
package forms
