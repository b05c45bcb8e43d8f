// Package services – SettingsService
//
// This file implements SettingsService, which owns credential and model
// resolution for inference calls. Resolution walks three tiers in strict
// precedence: the user's own credential when custom mode is enabled and a
// key is present, then the user's preferred model on the shared app
// credential, then the application defaults. Storage failures during
// resolution fail open to the app defaults so a degraded settings store
// never blocks chat.

package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/openrouter"
	"github.com/tbourn/go-study-backend/internal/repo"
)

// Credential sources reported by Resolve.
const (
	SourceCustom  = "custom"  // user's own key and model
	SourceDefault = "default" // user's preferred model on the shared key
	SourceApp     = "app"     // application defaults
)

// Resolved is the outcome of settings resolution for one inference call.
type Resolved struct {
	APIKey string
	Model  string
	Source string
}

// ModelCatalog lists inference models available to a user.
type ModelCatalog interface {
	ListModels(ctx context.Context, apiKey string) ([]openrouter.Model, error)
}

// SettingsService resolves per-user inference settings.
type SettingsService struct {
	DB      *gorm.DB
	Catalog ModelCatalog

	AppKey   string // shared application credential
	AppModel string // application default model
}

// fallbackModels is served when the live catalog cannot be fetched.
var fallbackModels = []openrouter.Model{
	{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", ContextLength: 200000},
	{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", ContextLength: 128000},
	{ID: "meta-llama/llama-3.1-8b-instruct:free", Name: "Llama 3.1 8B Instruct (free)", ContextLength: 131072, Free: true},
	{ID: "mistralai/mistral-7b-instruct:free", Name: "Mistral 7B Instruct (free)", ContextLength: 32768, Free: true},
}

// Get returns the user's stored settings, or zero-value settings when none
// exist yet.
func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	us, err := repo.GetUserSettings(ctx, s.DB, userID)
	if err == repo.ErrNotFound {
		return &domain.UserSettings{UserID: userID}, nil
	}
	return us, err
}

// Update persists the user's settings, last write wins.
func (s *SettingsService) Update(ctx context.Context, settings *domain.UserSettings) error {
	return repo.UpsertUserSettings(ctx, s.DB, settings)
}

// Resolve picks the credential and model for an inference call. It never
// fails: storage errors and absent settings both resolve to the app tier.
func (s *SettingsService) Resolve(ctx context.Context, userID string) Resolved {
	us, err := repo.GetUserSettings(ctx, s.DB, userID)
	if err != nil {
		if err != repo.ErrNotFound {
			log.Warn().Err(err).Str("user_id", userID).Msg("settings lookup failed, using app defaults")
		}
		return Resolved{APIKey: s.AppKey, Model: s.AppModel, Source: SourceApp}
	}

	if us.CustomEnabled && strings.TrimSpace(us.CustomAPIKey) != "" {
		model := strings.TrimSpace(us.CustomModel)
		if model == "" {
			model = s.AppModel
		}
		return Resolved{APIKey: strings.TrimSpace(us.CustomAPIKey), Model: model, Source: SourceCustom}
	}

	if model := strings.TrimSpace(us.DefaultModel); model != "" {
		return Resolved{APIKey: s.AppKey, Model: model, Source: SourceDefault}
	}

	return Resolved{APIKey: s.AppKey, Model: s.AppModel, Source: SourceApp}
}

// ListModels fetches the model catalog with the user's resolved credential,
// falling back to the shared key and finally to a static list so the picker
// is never empty.
func (s *SettingsService) ListModels(ctx context.Context, userID string) ([]openrouter.Model, error) {
	resolved := s.Resolve(ctx, userID)

	models, err := s.Catalog.ListModels(ctx, resolved.APIKey)
	if err == nil && len(models) > 0 {
		return models, nil
	}

	if resolved.Source == SourceCustom && s.AppKey != "" {
		models, err = s.Catalog.ListModels(ctx, s.AppKey)
		if err == nil && len(models) > 0 {
			return models, nil
		}
	}

	if err != nil {
		log.Warn().Err(err).Msg("model catalog unavailable, serving static list")
	}
	out := make([]openrouter.Model, len(fallbackModels))
	copy(out, fallbackModels)
	return out, nil
}
