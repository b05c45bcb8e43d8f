// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the device-local key-value blob store
// used for the persisted transcript, aggregate usage totals, and display
// preferences. Blobs are simple unversioned byte slices keyed by
// (user_id, key).
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
)

// Well-known state blob keys.
const (
	StateKeyTranscript = "transcript"
	StateKeyUsage      = "usage"
	StateKeyPrefs      = "prefs"
)

// GetStateBlob returns the raw blob stored under (userID, key), or
// (nil, nil) when none exists. Absence is not an error: every blob has a
// natural empty value the caller seeds from.
func GetStateBlob(ctx context.Context, db *gorm.DB, userID, key string) ([]byte, error) {
	var b domain.StateBlob
	err := db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b.Value, nil
}

// PutStateBlob stores value under (userID, key), replacing any previous blob
// in full. Blobs are persisted whole on every write; there is no partial
// update.
func PutStateBlob(ctx context.Context, db *gorm.DB, userID, key string, value []byte) error {
	return db.WithContext(ctx).Save(&domain.StateBlob{
		UserID: userID,
		Key:    key,
		Value:  value,
	}).Error
}
