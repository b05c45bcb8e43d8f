package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/openrouter"
)

func settingsRouter(settings SettingsService, usage UsageService) *gin.Engine {
	h := New(stubAssignSvc{}, stubChatSvc{}, settings, usage, stubProfileSvc{}, nil, nil)
	r := gin.New()
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.GET("/settings/models", h.ListModels)
	r.GET("/prefs", h.GetPrefs)
	r.PUT("/prefs", h.PutPrefs)
	return r
}

func TestGetSettings_MasksKey(t *testing.T) {
	settings := stubSettingsSvc{
		get: func(ctx context.Context, userID string) (*domain.UserSettings, error) {
			return &domain.UserSettings{
				UserID:        userID,
				CustomEnabled: true,
				CustomAPIKey:  "sk-or-v1-secret",
				CustomModel:   "anthropic/claude-3.5-sonnet",
			}, nil
		},
	}
	r := settingsRouter(settings, stubUsageSvc{})

	w := doJSON(t, r, http.MethodGet, "/settings", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get -> %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "sk-or-v1-secret") {
		t.Fatalf("credential leaked: %s", w.Body.String())
	}
	var out SettingsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !out.CustomEnabled || !out.HasCustomKey || out.CustomModel != "anthropic/claude-3.5-sonnet" {
		t.Fatalf("settings: %+v", out)
	}
}

func TestUpdateSettings_KeepsStoredKeyWhenOmitted(t *testing.T) {
	var saved *domain.UserSettings
	settings := stubSettingsSvc{
		get: func(ctx context.Context, userID string) (*domain.UserSettings, error) {
			return &domain.UserSettings{UserID: userID, CustomAPIKey: "stored-key"}, nil
		},
		update: func(ctx context.Context, s *domain.UserSettings) error {
			saved = s
			return nil
		},
	}
	r := settingsRouter(settings, stubUsageSvc{})

	w := doJSON(t, r, http.MethodPut, "/settings", "u1",
		`{"custom_enabled":true,"custom_model":"openai/gpt-4o-mini"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update -> %d body=%s", w.Code, w.Body.String())
	}
	if saved == nil || saved.CustomAPIKey != "stored-key" {
		t.Fatalf("stored key not preserved: %+v", saved)
	}
	if !saved.CustomEnabled || saved.CustomModel != "openai/gpt-4o-mini" {
		t.Fatalf("saved: %+v", saved)
	}
}

func TestUpdateSettings_ReplaceAndClearKey(t *testing.T) {
	var saved *domain.UserSettings
	settings := stubSettingsSvc{
		get: func(ctx context.Context, userID string) (*domain.UserSettings, error) {
			return &domain.UserSettings{UserID: userID, CustomAPIKey: "old-key"}, nil
		},
		update: func(ctx context.Context, s *domain.UserSettings) error {
			saved = s
			return nil
		},
	}
	r := settingsRouter(settings, stubUsageSvc{})

	// New key replaces the stored one.
	if w := doJSON(t, r, http.MethodPut, "/settings", "u1", `{"custom_api_key":" new-key "}`); w.Code != http.StatusOK {
		t.Fatalf("replace -> %d", w.Code)
	}
	if saved.CustomAPIKey != "new-key" {
		t.Fatalf("key = %q, want new-key", saved.CustomAPIKey)
	}

	// Explicit clear removes it even though the field is empty.
	if w := doJSON(t, r, http.MethodPut, "/settings", "u1", `{"clear_custom_key":true}`); w.Code != http.StatusOK {
		t.Fatalf("clear -> %d", w.Code)
	}
	if saved.CustomAPIKey != "" {
		t.Fatalf("key = %q, want empty", saved.CustomAPIKey)
	}
}

func TestListModels(t *testing.T) {
	settings := stubSettingsSvc{
		listModels: func(ctx context.Context, userID string) ([]openrouter.Model, error) {
			return []openrouter.Model{
				{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet"},
				{ID: "meta-llama/llama-3.1-8b-instruct:free", Name: "Llama 3.1 8B", Free: true},
			}, nil
		},
	}
	r := settingsRouter(settings, stubUsageSvc{})

	w := doJSON(t, r, http.MethodGet, "/settings/models", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("models -> %d", w.Code)
	}
	var models []openrouter.Model
	if err := json.Unmarshal(w.Body.Bytes(), &models); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(models) != 2 || !models[1].Free {
		t.Fatalf("models: %+v", models)
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	store := map[string]json.RawMessage{}
	usage := stubUsageSvc{
		prefs: func(ctx context.Context, userID string) (json.RawMessage, error) {
			return store[userID], nil
		},
		putPrefs: func(ctx context.Context, userID string, prefs json.RawMessage) error {
			store[userID] = prefs
			return nil
		},
	}
	r := settingsRouter(stubSettingsSvc{}, usage)

	// Unset prefs read back as an empty object.
	w := doJSON(t, r, http.MethodGet, "/prefs", "u1", "")
	if w.Code != http.StatusOK || w.Body.String() != "{}" {
		t.Fatalf("empty prefs -> %d %q", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPut, "/prefs", "u1", `{"theme":"dark","sidebar":false}`); w.Code != http.StatusNoContent {
		t.Fatalf("put prefs -> %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/prefs", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get prefs -> %d", w.Code)
	}
	var prefs map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &prefs); err != nil {
		t.Fatalf("json: %v", err)
	}
	if prefs["theme"] != "dark" {
		t.Fatalf("prefs: %+v", prefs)
	}

	// Malformed body is rejected before the store is touched.
	if w := doJSON(t, r, http.MethodPut, "/prefs", "u1", "{not json"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad prefs -> %d", w.Code)
	}
}
