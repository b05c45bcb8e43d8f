// Package auth integrates the external identity provider: proxying its REST
// account operations, translating its error codes into user-facing messages,
// and verifying the session tokens it mints.
//
// This file holds the error taxonomy. The provider reports failures as
// upper-snake-case code strings; every code a user can plausibly hit is
// mapped to a short display-safe message, with a generic fallback for the
// rest.
package auth

import "strings"

// Error is an identity-provider failure carrying the provider's code and a
// user-facing message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return "auth: " + e.Code + ": " + e.Message }

// providerMessages maps provider error codes to display-safe text.
var providerMessages = map[string]string{
	"INVALID_LOGIN_CREDENTIALS":   "Incorrect email or password.",
	"INVALID_PASSWORD":            "Incorrect email or password.",
	"EMAIL_NOT_FOUND":             "Incorrect email or password.",
	"USER_DISABLED":               "This account has been disabled.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts. Please try again later.",
	"INVALID_EMAIL":               "That email address is not valid.",
	"WEAK_PASSWORD":               "Password is too weak. Use at least 6 characters.",
	"EMAIL_EXISTS":                "An account with this email already exists.",
}

// newError builds an Error for a provider code, mapping known codes to their
// user-facing messages. Codes sometimes arrive with a suffix (e.g.
// "WEAK_PASSWORD : Password should be at least 6 characters"), so matching
// is on the leading token.
func newError(code string) *Error {
	key := strings.TrimSpace(code)
	if i := strings.IndexAny(key, " :"); i > 0 {
		key = key[:i]
	}
	if msg, ok := providerMessages[key]; ok {
		return &Error{Code: key, Message: msg}
	}
	return &Error{Code: key, Message: "Sign-in failed. Please try again."}
}

// UserMessage returns the display-safe message for a provider code.
func UserMessage(code string) string { return newError(code).Message }
