// Settings and preferences HTTP handlers.
//
// This file exposes the user-settings endpoints:
//   - GET  /settings         (stored settings, credential masked)
//   - PUT  /settings         (replace settings, last write wins)
//   - GET  /settings/models  (model catalog for the resolved credential)
//   - GET  /prefs            (raw display-preference blob)
//   - PUT  /prefs            (replace the blob whole)
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/openrouter"
)

// SettingsService defines the settings operations consumed by HTTP handlers.
type SettingsService interface {
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)
	Update(ctx context.Context, settings *domain.UserSettings) error
	ListModels(ctx context.Context, userID string) ([]openrouter.Model, error)
}

// SettingsResponse is the client view of stored settings. The API key is
// never echoed back; HasCustomKey reports whether one is stored.
type SettingsResponse struct {
	CustomEnabled bool   `json:"custom_enabled"`
	HasCustomKey  bool   `json:"has_custom_key"`
	CustomModel   string `json:"custom_model,omitempty"`
	DefaultModel  string `json:"default_model,omitempty"`
}

// UpdateSettingsRequest is the JSON payload for replacing settings. An empty
// CustomAPIKey keeps the previously stored key; the literal value "" with
// ClearCustomKey set removes it.
type UpdateSettingsRequest struct {
	CustomEnabled  bool   `json:"custom_enabled"`
	CustomAPIKey   string `json:"custom_api_key,omitempty"`
	ClearCustomKey bool   `json:"clear_custom_key,omitempty"`
	CustomModel    string `json:"custom_model,omitempty"`
	DefaultModel   string `json:"default_model,omitempty"`
}

// GetSettings godoc
// @ID          getSettings
// @Summary     Get user settings
// @Description Returns the stored inference settings with the credential masked.
// @Tags        Settings
// @Produce     json
// @Success     200  {object}  handlers.SettingsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /settings [get]
func (h *Handlers) GetSettings(c *gin.Context) {
	us, err := h.settingsSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SettingsResponse{
		CustomEnabled: us.CustomEnabled,
		HasCustomKey:  strings.TrimSpace(us.CustomAPIKey) != "",
		CustomModel:   us.CustomModel,
		DefaultModel:  us.DefaultModel,
	})
}

// UpdateSettings godoc
// @ID          updateSettings
// @Summary     Update user settings
// @Description Replaces the stored settings, last write wins. Omitting the API key keeps the stored one.
// @Tags        Settings
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.UpdateSettingsRequest  true  "Settings payload"
// @Success     200  {object}  handlers.SettingsResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /settings [put]
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)

	current, err := h.settingsSvc.Get(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	key := current.CustomAPIKey
	switch {
	case req.ClearCustomKey:
		key = ""
	case strings.TrimSpace(req.CustomAPIKey) != "":
		key = strings.TrimSpace(req.CustomAPIKey)
	}

	next := &domain.UserSettings{
		UserID:        uid,
		CustomEnabled: req.CustomEnabled,
		CustomAPIKey:  key,
		CustomModel:   strings.TrimSpace(req.CustomModel),
		DefaultModel:  strings.TrimSpace(req.DefaultModel),
	}
	if err := h.settingsSvc.Update(ctx, next); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SettingsResponse{
		CustomEnabled: next.CustomEnabled,
		HasCustomKey:  next.CustomAPIKey != "",
		CustomModel:   next.CustomModel,
		DefaultModel:  next.DefaultModel,
	})
}

// ListModels godoc
// @ID          listModels
// @Summary     List available inference models
// @Description Fetches the model catalog with the user's resolved credential, cascading to the shared key and a static list so the picker is never empty.
// @Tags        Settings
// @Produce     json
// @Success     200  {array}   openrouter.Model
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /settings/models [get]
func (h *Handlers) ListModels(c *gin.Context) {
	models, err := h.settingsSvc.ListModels(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, models)
}

// GetPrefs godoc
// @ID          getPrefs
// @Summary     Get display preferences
// @Description Returns the raw preference blob, or an empty object when unset.
// @Tags        Settings
// @Produce     json
// @Success     200  {object}  object
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /prefs [get]
func (h *Handlers) GetPrefs(c *gin.Context) {
	raw, err := h.usageSvc.Prefs(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// PutPrefs godoc
// @ID          putPrefs
// @Summary     Replace display preferences
// @Description Stores the request body as the new preference blob, replacing it whole.
// @Tags        Settings
// @Accept      json
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid JSON"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /prefs [put]
func (h *Handlers) PutPrefs(c *gin.Context) {
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.usageSvc.PutPrefs(c.Request.Context(), userID(c), raw); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
