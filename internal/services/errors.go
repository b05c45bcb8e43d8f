// Package services defines the business logic for assignments, chat, usage
// accounting, and settings resolution. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Assignment-related errors.
var (
	// ErrAssignmentNotFound indicates that the requested assignment does not
	// exist or is not accessible to the current user.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrEmptyTitle is returned when a create request carries a blank title.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrDeleteNotConfirmed is returned when a destructive delete is attempted
	// without the caller confirming it.
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
)

// Chat-related errors.
var (
	// ErrEmptyPrompt is returned when a send request contains an empty prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrPromptTooShort is returned when the prompt has fewer runes than the
	// configured minimum.
	ErrPromptTooShort = errors.New("prompt too short")

	// ErrPromptTooLong is returned when the prompt exceeds the configured
	// maximum length.
	ErrPromptTooLong = errors.New("prompt too long")

	// ErrCooldown is returned when a send arrives before the per-user
	// cooldown since the last accepted send has elapsed.
	ErrCooldown = errors.New("sending too fast")

	// ErrBusy is returned when a send arrives while the user's previous send
	// is still in flight.
	ErrBusy = errors.New("a message is already being processed")
)
