// Failures of the chat-completions endpoint fall into two very different
// families and the gateway treats them differently:
//
//   - *NetworkError: the transport never reached the provider (DNS, refused
//     connection, timeout). These are retried and, as a last resort, routed
//     through the alternate relay path.
//   - *APIError: the provider answered with a structured error body. These
//     are classified; only upstream-unavailable (502/503) is transient, and
//     none of them are ever routed through the relay.

package openrouter

import (
	"errors"
	"fmt"
)

// ErrorClass identifies the user-facing category of a provider error.
type ErrorClass string

const (
	// ClassRateLimited maps HTTP 429.
	ClassRateLimited ErrorClass = "rate_limited"
	// ClassQuotaExceeded maps HTTP 402 (insufficient credits).
	ClassQuotaExceeded ErrorClass = "quota_exceeded"
	// ClassInvalidCredential maps HTTP 401/403.
	ClassInvalidCredential ErrorClass = "invalid_credential"
	// ClassModelUnavailable maps HTTP 404 (unknown or retired model).
	ClassModelUnavailable ErrorClass = "model_unavailable"
	// ClassUpstreamUnavailable maps HTTP 502/503 (provider backend down).
	ClassUpstreamUnavailable ErrorClass = "upstream_unavailable"
	// ClassAPIError is the catch-all for other structured provider errors.
	ClassAPIError ErrorClass = "api_error"
)

// APIError is a structured error returned by the provider. Message carries
// the provider's own text when present; UserMessage() renders the short
// human-readable line shown to the end user.
type APIError struct {
	Class   ErrorClass
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openrouter: %s (status %d): %s", e.Class, e.Status, e.Message)
	}
	return fmt.Sprintf("openrouter: %s (status %d)", e.Class, e.Status)
}

// Transient reports whether the failure is worth retrying.
func (e *APIError) Transient() bool {
	return e.Class == ClassUpstreamUnavailable
}

// UserMessage returns a short, display-safe description per class.
func (e *APIError) UserMessage() string {
	switch e.Class {
	case ClassRateLimited:
		return "The AI service is receiving too many requests. Please wait a moment and try again."
	case ClassQuotaExceeded:
		return "The API key has run out of credits."
	case ClassInvalidCredential:
		return "The API key was rejected. Check your custom key in settings."
	case ClassModelUnavailable:
		return "The selected model is not available. Pick another model in settings."
	case ClassUpstreamUnavailable:
		return "The AI service is temporarily unavailable. Please try again shortly."
	default:
		if e.Message != "" {
			return "AI service error: " + e.Message
		}
		return "The AI service returned an unexpected error."
	}
}

/// NetworkError wraps a transport-level failure: the request never produced a
// provider response.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string { return "openrouter: network unreachable: " + e.Err.Error() }

// Unwrap exposes the underlying transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is (or wraps) a transport-level failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

/// IsTransient reports whether err is worth another attempt: a transport
// failure or an upstream-unavailable provider response.
func IsTransient(err error) bool {
	if IsNetwork(err) {
		return true
	}
	var ae *APIError
	return errors.As(err, &ae) && ae.Transient()
}

// classify maps an HTTP status to an ErrorClass.
func classify(status int) ErrorClass {
	switch status {
	case 429:
		return ClassRateLimited
	case 402:
		return ClassQuotaExceeded
	case 401, 403:
		return ClassInvalidCredential
	case 404:
		return ClassModelUnavailable
	case 502, 503:
		return ClassUpstreamUnavailable
	default:
		return ClassAPIError
	}
}
