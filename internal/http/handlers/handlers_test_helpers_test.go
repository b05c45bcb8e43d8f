package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/openrouter"
	"github.com/tbourn/go-study-backend/internal/services"
	"github.com/tbourn/go-study-backend/internal/watch"
)

func init() { gin.SetMode(gin.TestMode) }

// newHandlerDB opens a throwaway in-memory database with the full schema.
func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Assignment{},
		&domain.UserProfile{},
		&domain.UserSettings{},
		&domain.StateBlob{},
		&domain.ChatReceipt{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// ---------- flexible service stubs ----------

type stubChatSvc struct {
	send func(ctx context.Context, userID, prompt, key string) (*services.SendResult, error)
}

func (s stubChatSvc) Send(ctx context.Context, userID, prompt, key string) (*services.SendResult, error) {
	if s.send != nil {
		return s.send(ctx, userID, prompt, key)
	}
	return &services.SendResult{}, nil
}

type stubUsageSvc struct {
	transcript func(ctx context.Context, userID string) ([]domain.ChatTurn, error)
	totals     func(ctx context.Context, userID string) (domain.UsageTotals, error)
	prefs      func(ctx context.Context, userID string) (json.RawMessage, error)
	putPrefs   func(ctx context.Context, userID string, prefs json.RawMessage) error
}

func (s stubUsageSvc) Transcript(ctx context.Context, userID string) ([]domain.ChatTurn, error) {
	if s.transcript != nil {
		return s.transcript(ctx, userID)
	}
	return nil, nil
}

func (s stubUsageSvc) Totals(ctx context.Context, userID string) (domain.UsageTotals, error) {
	if s.totals != nil {
		return s.totals(ctx, userID)
	}
	return domain.UsageTotals{}, nil
}

func (s stubUsageSvc) Prefs(ctx context.Context, userID string) (json.RawMessage, error) {
	if s.prefs != nil {
		return s.prefs(ctx, userID)
	}
	return nil, nil
}

func (s stubUsageSvc) PutPrefs(ctx context.Context, userID string, prefs json.RawMessage) error {
	if s.putPrefs != nil {
		return s.putPrefs(ctx, userID, prefs)
	}
	return nil
}

type stubSettingsSvc struct {
	get        func(ctx context.Context, userID string) (*domain.UserSettings, error)
	update     func(ctx context.Context, settings *domain.UserSettings) error
	listModels func(ctx context.Context, userID string) ([]openrouter.Model, error)
}

func (s stubSettingsSvc) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	if s.get != nil {
		return s.get(ctx, userID)
	}
	return &domain.UserSettings{UserID: userID}, nil
}

func (s stubSettingsSvc) Update(ctx context.Context, settings *domain.UserSettings) error {
	if s.update != nil {
		return s.update(ctx, settings)
	}
	return nil
}

func (s stubSettingsSvc) ListModels(ctx context.Context, userID string) ([]openrouter.Model, error) {
	if s.listModels != nil {
		return s.listModels(ctx, userID)
	}
	return nil, nil
}

type stubProfileSvc struct {
	ensure func(ctx context.Context, userID, email string) (*domain.UserProfile, error)
	rename func(ctx context.Context, userID, displayName string) (*domain.UserProfile, error)
}

func (s stubProfileSvc) Ensure(ctx context.Context, userID, email string) (*domain.UserProfile, error) {
	if s.ensure != nil {
		return s.ensure(ctx, userID, email)
	}
	return &domain.UserProfile{UserID: userID, Email: email, DisplayName: "Student"}, nil
}

func (s stubProfileSvc) Rename(ctx context.Context, userID, displayName string) (*domain.UserProfile, error) {
	if s.rename != nil {
		return s.rename(ctx, userID, displayName)
	}
	return &domain.UserProfile{UserID: userID, DisplayName: displayName}, nil
}

type stubAssignSvc struct {
	create   func(ctx context.Context, userID, title, description, subject string, dueDate *time.Time) (*domain.Assignment, error)
	list     func(ctx context.Context, userID string) ([]domain.Assignment, error)
	listPage func(ctx context.Context, userID string, page, pageSize int) ([]domain.Assignment, int64, error)
	toggle   func(ctx context.Context, userID, id string) (*domain.Assignment, error)
	del      func(ctx context.Context, userID, id string, confirm services.ConfirmFunc) error
	search   func(ctx context.Context, userID, query string) ([]domain.Assignment, error)
}

func (s stubAssignSvc) Create(ctx context.Context, userID, title, description, subject string, dueDate *time.Time) (*domain.Assignment, error) {
	if s.create != nil {
		return s.create(ctx, userID, title, description, subject, dueDate)
	}
	return &domain.Assignment{ID: uuid.NewString(), UserID: userID, Title: title}, nil
}

func (s stubAssignSvc) List(ctx context.Context, userID string) ([]domain.Assignment, error) {
	if s.list != nil {
		return s.list(ctx, userID)
	}
	return nil, nil
}

func (s stubAssignSvc) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Assignment, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, userID, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubAssignSvc) Toggle(ctx context.Context, userID, id string) (*domain.Assignment, error) {
	if s.toggle != nil {
		return s.toggle(ctx, userID, id)
	}
	return nil, services.ErrAssignmentNotFound
}

func (s stubAssignSvc) Delete(ctx context.Context, userID, id string, confirm services.ConfirmFunc) error {
	if s.del != nil {
		return s.del(ctx, userID, id, confirm)
	}
	return nil
}

func (s stubAssignSvc) Search(ctx context.Context, userID, query string) ([]domain.Assignment, error) {
	if s.search != nil {
		return s.search(ctx, userID, query)
	}
	return nil, nil
}

func (s stubAssignSvc) Subscribe(ctx context.Context, userID string) (*watch.Subscription, error) {
	hub := watch.NewHub()
	return hub.Subscribe(userID), nil
}
