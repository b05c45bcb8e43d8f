package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-study-backend/internal/watch"
)

func newAssignmentService(t *testing.T) *AssignmentService {
	t.Helper()
	return &AssignmentService{DB: newTestDB(t), Hub: watch.NewHub()}
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	s := newAssignmentService(t)
	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := s.Create(context.Background(), "u1", title, "", "", nil); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("title %q: expected ErrEmptyTitle, got %v", title, err)
		}
	}
}

func TestCreateTrimsAndDefaults(t *testing.T) {
	s := newAssignmentService(t)
	a, err := s.Create(context.Background(), "u1", "  Essay  ", " draft ", " English ", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Title != "Essay" || a.Subject != "English" || a.Description != "draft" {
		t.Errorf("fields not trimmed: %+v", a)
	}
	if a.Status != "pending" {
		t.Errorf("status = %q, want pending", a.Status)
	}
}

func TestMutationsPublishSnapshots(t *testing.T) {
	s := newAssignmentService(t)
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, "u1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	// Seeded snapshot is empty.
	snap := waitSnap(t, sub)
	if len(snap) != 0 {
		t.Fatalf("initial snapshot has %d items", len(snap))
	}

	a, err := s.Create(ctx, "u1", "Read ch. 4", "", "History", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	snap = waitSnap(t, sub)
	if len(snap) != 1 || snap[0].ID != a.ID {
		t.Fatalf("snapshot after create = %+v", snap)
	}

	if _, err := s.Toggle(ctx, "u1", a.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	snap = waitSnap(t, sub)
	if snap[0].Status != "completed" {
		t.Errorf("snapshot status = %q after toggle", snap[0].Status)
	}

	if err := s.Delete(ctx, "u1", a.ID, func() bool { return true }); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	snap = waitSnap(t, sub)
	if len(snap) != 0 {
		t.Errorf("snapshot after delete has %d items", len(snap))
	}
}

func waitSnap(t *testing.T, sub *watch.Subscription) watch.Snapshot {
	t.Helper()
	select {
	case snap := <-sub.C:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestToggleUnknownAssignment(t *testing.T) {
	s := newAssignmentService(t)
	if _, err := s.Toggle(context.Background(), "u1", "missing"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s := newAssignmentService(t)
	ctx := context.Background()
	a, err := s.Create(ctx, "u1", "Lab report", "", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(ctx, "u1", a.ID, nil); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Errorf("nil confirm: got %v", err)
	}
	if err := s.Delete(ctx, "u1", a.ID, func() bool { return false }); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Errorf("false confirm: got %v", err)
	}
	if _, err := s.Get(ctx, "u1", a.ID); err != nil {
		t.Fatalf("assignment should survive unconfirmed deletes: %v", err)
	}
	if err := s.Delete(ctx, "u1", a.ID, func() bool { return true }); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if _, err := s.Get(ctx, "u1", a.ID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound after delete, got %v", err)
	}
}

func TestSearchMatchesAnyField(t *testing.T) {
	s := newAssignmentService(t)
	ctx := context.Background()
	seed := []struct{ title, desc, subject string }{
		{"Algebra worksheet", "chapter review", "Math"},
		{"Essay draft", "on photosynthesis", "Biology"},
		{"Reading log", "", "English"},
	}
	for _, x := range seed {
		if _, err := s.Create(ctx, "u1", x.title, x.desc, x.subject, nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	cases := []struct {
		query string
		want  int
	}{
		{"ALGEBRA", 1},      // title, case-insensitive
		{"photosynth", 1},   // description
		{"math", 1},         // subject
		{"e", 3},            // substring across all
		{"  ", 3},           // blank matches everything
		{"nonexistent", 0},
	}
	for _, tc := range cases {
		got, err := s.Search(ctx, "u1", tc.query)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if len(got) != tc.want {
			t.Errorf("Search(%q) = %d results, want %d", tc.query, len(got), tc.want)
		}
	}

	// Another user's data never leaks in.
	if _, err := s.Create(ctx, "u2", "Algebra too", "", "", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Search(ctx, "u1", "algebra")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("cross-user search leak: %d results", len(got))
	}
}

func TestListPageBounds(t *testing.T) {
	s := newAssignmentService(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		if _, err := s.Create(ctx, "u1", "t", "", "", nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, total, err := s.ListPage(ctx, "u1", 0, 3) // page clamps to 1
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 7 || len(items) != 3 {
		t.Errorf("page 1: total=%d len=%d", total, len(items))
	}

	items, _, err = s.ListPage(ctx, "u1", 3, 3)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("last page len=%d, want 1", len(items))
	}

	items, total, err = s.ListPage(ctx, "nobody", 1, 3)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("empty user: total=%d len=%d", total, len(items))
	}
}
