// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the per-user
// settings document and the lazily created profile record.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
)

// GetUserSettings fetches the settings document for userID, or ErrNotFound
// when the user has never stored one. Callers are expected to fail open to
// application defaults on any error here.
func GetUserSettings(ctx context.Context, db *gorm.DB, userID string) (*domain.UserSettings, error) {
	var s domain.UserSettings
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertUserSettings stores the settings document for userID, replacing any
// previous one. UpdatedAt is refreshed on every write.
func UpsertUserSettings(ctx context.Context, db *gorm.DB, s *domain.UserSettings) error {
	s.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(s).Error
}

// GetProfile fetches the profile for userID, or ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureProfile returns the existing profile for userID or creates one from
// the given identity attributes on first touch. The create path is tolerant
// of a concurrent insert: on a unique-key race it re-reads the winner.
func EnsureProfile(ctx context.Context, db *gorm.DB, userID, displayName, email string) (*domain.UserProfile, error) {
	if p, err := GetProfile(ctx, db, userID); err == nil {
		return p, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.UserProfile{
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		// Lost the race to another request for the same user.
		if existing, gerr := GetProfile(ctx, db, userID); gerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return p, nil
}
