// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the ChatReceipt
// model used to implement safe-retry semantics for chat sends.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
)

// ErrDuplicate indicates that a receipt already exists for the given
// (user_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetChatReceipt returns a non-expired receipt or ErrNotFound.
func GetChatReceipt(ctx context.Context, db *gorm.DB, userID, key string, now time.Time) (*domain.ChatReceipt, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.ChatReceipt
	err := db.WithContext(ctx).
		Where("user_id = ? AND key = ? AND expires_at > ?", userID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateChatReceipt inserts a receipt carrying the JSON-encoded turn and
// returns ErrDuplicate on unique violation.
func CreateChatReceipt(ctx context.Context, db *gorm.DB, userID, key string, turn []byte, ttl time.Duration) (*domain.ChatReceipt, error) {
	now := time.Now().UTC()
	rec := &domain.ChatReceipt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Key:       key,
		Turn:      turn,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
