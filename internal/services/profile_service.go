// Package services – ProfileService
//
// Profiles are created lazily: the first authenticated touch materializes a
// record seeded from the session's email, with a display name derived from
// the address's local part ("jane.doe@x.com" becomes "Jane Doe"). Explicit
// renames overwrite the derived name and win thereafter.

package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/repo"
)

// ErrEmptyDisplayName rejects blank rename requests.
var ErrEmptyDisplayName = &ValidationError{"display name is empty"}

// ValidationError marks caller-fixable input problems.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// titleCaser renders derived display names; cases.Caser values are not safe
// for concurrent use, so each call takes a fresh one.
func titleCaser() cases.Caser { return cases.Title(language.English) }

// ProfileService owns the lazily created per-user profile.
type ProfileService struct {
	DB *gorm.DB
}

// Ensure returns the user's profile, creating it on first touch with a
// display name derived from the email when none was supplied.
func (s *ProfileService) Ensure(ctx context.Context, userID, email string) (*domain.UserProfile, error) {
	return repo.EnsureProfile(ctx, s.DB, userID, s.displayNameFrom(email), email)
}

// Rename replaces the display name, trimming surrounding whitespace.
func (s *ProfileService) Rename(ctx context.Context, userID, displayName string) (*domain.UserProfile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}
	p, err := repo.GetProfile(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	p.DisplayName = displayName
	if err := s.DB.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// displayNameFrom turns an email local part into a presentable name:
// separators become spaces and each word is title-cased.
func (s *ProfileService) displayNameFrom(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	local = strings.Map(func(r rune) rune {
		switch r {
		case '.', '_', '-', '+':
			return ' '
		}
		return r
	}, local)
	local = strings.Join(strings.Fields(local), " ")
	if local == "" {
		return "Student"
	}
	return titleCaser().String(local)
}
