// Account HTTP handlers.
//
// These endpoints proxy the external identity provider. They are mounted
// only when a provider URL is configured; deployments without one run in
// single-user mode and never see these routes.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-study-backend/internal/auth"
)

// CredentialsRequest is the JSON payload for register and login.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"hunter22!"`
}

// PasswordResetRequest is the JSON payload for requesting a reset email.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"jane@example.com"`
}

// SessionResponse is returned after a successful register or login.
type SessionResponse struct {
	UserID    string `json:"user_id" example:"u-8f14e45f"`
	Email     string `json:"email" example:"jane@example.com"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in" example:"3600"`
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new account with the identity provider and returns a session token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CredentialsRequest  true  "Email and password"
// @Success     201  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse "Too many attempts"
// @Failure     502  {object}  handlers.ErrorResponse "Provider unreachable"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	s, err := h.authClient.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	ok(c, http.StatusCreated, h.sessionResponse(s))
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Exchanges credentials for a session token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CredentialsRequest  true  "Email and password"
// @Success     200  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Incorrect credentials"
// @Failure     429  {object}  handlers.ErrorResponse "Too many attempts"
// @Failure     502  {object}  handlers.ErrorResponse "Provider unreachable"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	s, err := h.authClient.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	ok(c, http.StatusOK, h.sessionResponse(s))
}

// RequestPasswordReset godoc
// @ID          requestPasswordReset
// @Summary     Request a password reset email
// @Description Asks the provider to send a reset link. Always answers with a generic confirmation so the endpoint does not reveal which addresses exist.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.PasswordResetRequest  true  "Account email"
// @Success     200  {object}  map[string]string
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /auth/reset [post]
func (h *Handlers) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email required")
		return
	}

	if err := h.authClient.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		// Deliberately swallowed: the response must not distinguish
		// registered addresses from unknown ones.
		log.Warn().Err(err).Msg("password reset request failed")
	}
	ok(c, http.StatusOK, gin.H{"message": "If the address is registered, a reset email is on its way."})
}

// sessionResponse converts a provider session into the API shape, re-minting
// the token locally when the backend has its own signing secret.
func (h *Handlers) sessionResponse(s *auth.Session) SessionResponse {
	out := SessionResponse{
		UserID:    s.UserID,
		Email:     s.Email,
		Token:     s.Token,
		ExpiresIn: s.ExpiresIn,
	}
	if h.verifier != nil && h.verifier.HasSecret() {
		if tok, err := h.verifier.Mint(s.UserID, s.Email); err == nil {
			out.Token = tok
		} else {
			log.Error().Err(err).Msg("session token mint failed")
		}
	}
	return out
}

// writeAuthError maps provider failures onto HTTP statuses.
func writeAuthError(c *gin.Context, err error) {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		fail(c, http.StatusBadGateway, ErrCodeAuthFailed, "the sign-in service is unreachable right now, please try again shortly")
		return
	}

	status := http.StatusBadRequest
	switch ae.Code {
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_PASSWORD", "EMAIL_NOT_FOUND":
		status = http.StatusUnauthorized
	case "USER_DISABLED":
		status = http.StatusForbidden
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		status = http.StatusTooManyRequests
	case "PROVIDER_ERROR":
		status = http.StatusBadGateway
	}
	fail(c, status, ErrCodeAuthFailed, ae.Message)
}
