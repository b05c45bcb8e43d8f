// Package services – AssignmentService
//
// This file implements AssignmentService, the application-level component
// that owns the lifecycle of assignments: creation, listing, status
// toggling, confirmed deletion, and substring search. Every committed
// mutation publishes a fresh per-user snapshot to the watch.Hub so live
// subscribers converge on the stored state without polling.
//
// Observability: public methods are OpenTelemetry-instrumented; spans
// include user/assignment identifiers where applicable.

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/repo"
	"github.com/tbourn/go-study-backend/internal/watch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ConfirmFunc gates destructive operations. Delete proceeds only when the
// callback reports true; the HTTP layer supplies one backed by an explicit
// request flag.
type ConfirmFunc func() bool

// AssignmentService coordinates assignment persistence and live snapshots.
type AssignmentService struct {
	DB  *gorm.DB
	Hub *watch.Hub
}

// Create validates and persists a new assignment, then publishes the updated
// snapshot. New assignments always start pending.
func (s *AssignmentService) Create(ctx context.Context, userID, title, description, subject string, dueDate *time.Time) (*domain.Assignment, error) {
	tr := otel.Tracer("services/AssignmentService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	a, err := repo.CreateAssignment(ctx, s.DB, userID, title, strings.TrimSpace(description), strings.TrimSpace(subject), dueDate)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, userID)
	return a, nil
}

// List returns every assignment for the user, most recently updated first.
func (s *AssignmentService) List(ctx context.Context, userID string) ([]domain.Assignment, error) {
	return repo.ListAssignments(ctx, s.DB, userID)
}

// ListPage returns one page of assignments plus the total count.
func (s *AssignmentService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Assignment, int64, error) {
	tr := otel.Tracer("services/AssignmentService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountAssignments(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Assignment{}, 0, nil
	}
	items, err := repo.ListAssignmentsPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Get returns a single assignment owned by the user.
func (s *AssignmentService) Get(ctx context.Context, userID, id string) (*domain.Assignment, error) {
	a, err := repo.GetAssignment(ctx, s.DB, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAssignmentNotFound
	}
	return a, err
}

// Toggle flips the assignment's completion status and refreshes its update
// timestamp, then publishes the new snapshot.
func (s *AssignmentService) Toggle(ctx context.Context, userID, id string) (*domain.Assignment, error) {
	tr := otel.Tracer("services/AssignmentService")
	ctx, span := tr.Start(ctx, "Toggle",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("assignment.id", id),
		),
	)
	defer span.End()

	a, err := repo.ToggleAssignmentStatus(ctx, s.DB, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, userID)
	return a, nil
}

// Delete removes an assignment after the confirm callback approves it.
func (s *AssignmentService) Delete(ctx context.Context, userID, id string, confirm ConfirmFunc) error {
	tr := otel.Tracer("services/AssignmentService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("assignment.id", id),
		),
	)
	defer span.End()

	if confirm == nil || !confirm() {
		return ErrDeleteNotConfirmed
	}
	err := repo.DeleteAssignment(ctx, s.DB, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrAssignmentNotFound
	}
	if err != nil {
		return err
	}
	s.publish(ctx, userID)
	return nil
}

// Search returns the user's assignments whose title, subject, or description
// contains the query, case-insensitively. A blank query matches everything.
func (s *AssignmentService) Search(ctx context.Context, userID, query string) ([]domain.Assignment, error) {
	items, err := repo.ListAssignments(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items, nil
	}
	out := make([]domain.Assignment, 0, len(items))
	for _, a := range items {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Subject), q) ||
			strings.Contains(strings.ToLower(a.Description), q) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Subscribe registers a live snapshot subscription for the user and seeds it
// with the current state. The caller must Close the subscription when done.
func (s *AssignmentService) Subscribe(ctx context.Context, userID string) (*watch.Subscription, error) {
	sub := s.Hub.Subscribe(userID)
	items, err := repo.ListAssignments(ctx, s.DB, userID)
	if err != nil {
		sub.Close()
		return nil, err
	}
	s.Hub.Publish(userID, items)
	return sub, nil
}

// publish pushes the user's current assignment list to live subscribers.
// Failures are logged, never surfaced: the mutation has already committed.
func (s *AssignmentService) publish(ctx context.Context, userID string) {
	if s.Hub == nil {
		return
	}
	items, err := repo.ListAssignments(ctx, s.DB, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("snapshot publish skipped")
		return
	}
	s.Hub.Publish(userID, items)
}
