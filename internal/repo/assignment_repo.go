// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Assignment
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an assignment is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Ordering: every listing is sorted by updated_at descending. UpdatedAt is
// the sole ordering key visible to derived views, so every mutating function
// here stamps a fresh server-side UTC timestamp.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateAssignment inserts a new Assignment row owned by userID. The ID is a
// randomly generated UUID, the status starts pending, and both timestamps
// are set to the same server-side UTC instant.
func CreateAssignment(ctx context.Context, db *gorm.DB, userID, title, description, subject string, dueDate *time.Time) (*domain.Assignment, error) {
	now := time.Now().UTC()
	a := &domain.Assignment{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Subject:     subject,
		DueDate:     dueDate,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssignments returns all assignments belonging to userID, ordered by
// updated_at descending (most recently touched first). It returns an empty
// slice if the user has none. On DB error, it returns the error.
func ListAssignments(ctx context.Context, db *gorm.DB, userID string) ([]domain.Assignment, error) {
	var out []domain.Assignment
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}

// CountAssignments returns the total number of assignments owned by userID.
func CountAssignments(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Assignment{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListAssignmentsPage returns a paginated slice of assignments for userID,
// ordered by updated_at descending. Use CountAssignments to obtain the total
// for pagination metadata.
func ListAssignmentsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Assignment, error) {
	var out []domain.Assignment
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetAssignment fetches a single assignment by its ID and owner. If the
// record does not exist, it returns ErrNotFound.
func GetAssignment(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Assignment, error) {
	var a domain.Assignment
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ToggleAssignmentStatus flips pending <-> completed for the assignment owned
// by userID and stamps a fresh updated_at. Each call flips exactly once;
// concurrent toggles from two clients race and the last write wins (the
// store's server timestamp is the sole arbiter, no merge).
func ToggleAssignmentStatus(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Assignment, error) {
	var a domain.Assignment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			return err
		}
		a.Status = a.Status.Toggle()
		a.UpdatedAt = time.Now().UTC()
		return tx.Model(&domain.Assignment{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{"status": a.Status, "updated_at": a.UpdatedAt}).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAssignment removes an assignment owned by userID. Removal is
// unconditional here; any human confirmation happens at the call boundary.
// Returns ErrNotFound when no row was affected.
func DeleteAssignment(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Assignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
