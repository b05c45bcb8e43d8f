// Profile HTTP handlers.
//
// This file exposes the profile endpoints:
//   - GET /profile  (lazily created on first authenticated touch)
//   - PUT /profile  (rename)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/http/middleware"
	"github.com/tbourn/go-study-backend/internal/services"
)

// ProfileService defines the profile operations consumed by HTTP handlers.
type ProfileService interface {
	Ensure(ctx context.Context, userID, email string) (*domain.UserProfile, error)
	Rename(ctx context.Context, userID, displayName string) (*domain.UserProfile, error)
}

// RenameProfileRequest is the JSON payload for a profile rename.
type RenameProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required" example:"Jane Doe"`
}

// ProfileResponse is the stored profile plus the derived avatar initial.
type ProfileResponse struct {
	domain.UserProfile
	AvatarInitial string `json:"avatar_initial" example:"J"`
}

func profileResponse(p *domain.UserProfile) ProfileResponse {
	return ProfileResponse{UserProfile: *p, AvatarInitial: p.AvatarInitial()}
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get the user profile
// @Description Returns the profile, creating it on first touch with a display name derived from the session email.
// @Tags        Profile
// @Produce     json
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Ensure(c.Request.Context(), userID(c), middleware.UserEmail(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, profileResponse(p))
}

// RenameProfile godoc
// @ID          renameProfile
// @Summary     Rename the user profile
// @Description Replaces the display name.
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RenameProfileRequest  true  "New display name"
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /profile [put]
func (h *Handlers) RenameProfile(c *gin.Context) {
	var req RenameProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "display_name required")
		return
	}

	p, err := h.profileSvc.Rename(c.Request.Context(), userID(c), req.DisplayName)
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, ve.Msg)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, profileResponse(p))
}
