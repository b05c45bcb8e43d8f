package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/openrouter"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := db.AutoMigrate(
		&domain.Assignment{},
		&domain.UserProfile{},
		&domain.UserSettings{},
		&domain.StateBlob{},
		&domain.ChatReceipt{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeCompleter is a scripted Completer recording every call.
type fakeCompleter struct {
	primaryErrs   []error // consumed per primary call; nil entry means success
	fallbackErr   error
	hasFallback   bool
	reply         *openrouter.Completion
	primaryCalls  int
	fallbackCalls int
	lastKey       string
	lastModel     string
}

func okCompletion() *openrouter.Completion {
	return &openrouter.Completion{
		Content: "sure thing",
		Usage: openrouter.Usage{
			PromptTokens:     100,
			CompletionTokens: 50,
			TotalTokens:      150,
		},
		Duration: 2 * time.Second,
	}
}

func (f *fakeCompleter) Complete(_ context.Context, apiKey, model, _ string) (*openrouter.Completion, error) {
	f.primaryCalls++
	f.lastKey, f.lastModel = apiKey, model
	if n := f.primaryCalls - 1; n < len(f.primaryErrs) && f.primaryErrs[n] != nil {
		return nil, f.primaryErrs[n]
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return okCompletion(), nil
}

func (f *fakeCompleter) CompleteFallback(_ context.Context, apiKey, model, _ string) (*openrouter.Completion, error) {
	f.fallbackCalls++
	f.lastKey, f.lastModel = apiKey, model
	if f.fallbackErr != nil {
		return nil, f.fallbackErr
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return okCompletion(), nil
}

func (f *fakeCompleter) HasFallback() bool { return f.hasFallback }

// fakeCatalog is a scripted ModelCatalog recording the keys it was asked with.
type fakeCatalog struct {
	models map[string][]openrouter.Model
	err    error
	keys   []string
}

func (f *fakeCatalog) ListModels(_ context.Context, apiKey string) ([]openrouter.Model, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.models[apiKey], nil
}
