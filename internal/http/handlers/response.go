// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used by every endpoint:
// the structured error envelope, consistent JSON serialization, and small
// helpers for common patterns, so success and failure responses look the
// same everywhere.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "assignment not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-study-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// Code is a stable machine-readable string (see errors.go); Message is safe
// to show to users; RequestID correlates server logs with client errors.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"assignment not found"`
}

// fail aborts the request with a structured error. Server-side failures
// (>= 500) are logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for router-level handlers (NoRoute,
// NoMethod) that live outside this package.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
