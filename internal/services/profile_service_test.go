package services

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureCreatesOnFirstTouch(t *testing.T) {
	s := &ProfileService{DB: newTestDB(t)}
	ctx := context.Background()

	p, err := s.Ensure(ctx, "u1", "jane.doe@example.com")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.DisplayName != "Jane Doe" {
		t.Errorf("DisplayName = %q, want Jane Doe", p.DisplayName)
	}
	if p.Email != "jane.doe@example.com" {
		t.Errorf("Email = %q", p.Email)
	}
}

func TestEnsureNeverOverwrites(t *testing.T) {
	s := &ProfileService{DB: newTestDB(t)}
	ctx := context.Background()

	if _, err := s.Ensure(ctx, "u1", "jane@example.com"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := s.Rename(ctx, "u1", "JD"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	// A later touch with a different email must not clobber anything.
	p, err := s.Ensure(ctx, "u1", "other@example.com")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.DisplayName != "JD" || p.Email != "jane@example.com" {
		t.Errorf("profile overwritten: %+v", p)
	}
}

func TestRenameValidation(t *testing.T) {
	s := &ProfileService{DB: newTestDB(t)}
	ctx := context.Background()
	if _, err := s.Ensure(ctx, "u1", "a@b.com"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	var ve *ValidationError
	if _, err := s.Rename(ctx, "u1", "   "); !errors.As(err, &ve) {
		t.Errorf("blank rename: got %v, want ValidationError", err)
	}

	p, err := s.Rename(ctx, "u1", "  New Name  ")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if p.DisplayName != "New Name" {
		t.Errorf("DisplayName = %q", p.DisplayName)
	}
}

func TestDisplayNameDerivation(t *testing.T) {
	s := &ProfileService{}
	cases := []struct{ email, want string }{
		{"jane.doe@example.com", "Jane Doe"},
		{"john_smith-jr@example.com", "John Smith Jr"},
		{"single@example.com", "Single"},
		{"weird+tag@example.com", "Weird Tag"},
		{"", "Student"},
		{"@example.com", "Student"},
	}
	for _, tc := range cases {
		if got := s.displayNameFrom(tc.email); got != tc.want {
			t.Errorf("displayNameFrom(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}
