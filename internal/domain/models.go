// Package domain defines the persistence models for assignments, user
// profiles, per-user AI settings, and chat transcripts. These types are
// mapped with GORM and form the core data layer of the study backend.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AssignmentStatus is the lifecycle state of an assignment. Only two states
// exist; toggling flips between them.
type AssignmentStatus string

const (
	// StatusPending marks an assignment as not yet completed.
	StatusPending AssignmentStatus = "pending"
	// StatusCompleted marks an assignment as done.
	StatusCompleted AssignmentStatus = "completed"
)

// Toggle returns the opposite status.
func (s AssignmentStatus) Toggle() AssignmentStatus {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// UnmarshalJSON accepts both the string form ("pending"/"completed") and the
// legacy boolean form (true/false) still present in older stored documents.
// The legacy form is normalized on read and never written back.
func (s *AssignmentStatus) UnmarshalJSON(b []byte) error {
	var legacy bool
	if err := json.Unmarshal(b, &legacy); err == nil {
		if legacy {
			*s = StatusCompleted
		} else {
			*s = StatusPending
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("invalid assignment status: %s", string(b))
	}
	switch AssignmentStatus(str) {
	case StatusPending, StatusCompleted:
		*s = AssignmentStatus(str)
		return nil
	}
	return fmt.Errorf("invalid assignment status: %q", str)
}

// Assignment represents one task owned by a user. Identity is the
// repository-assigned UUID; UpdatedAt is the sole ordering key for the
// recent-activity feed and the completed-today derivation, so every mutation
// must refresh it.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owner; indexed for efficient retrieval.
//   - Title: required, human-readable task title.
//   - Description / Subject: free-form metadata.
//   - DueDate: optional calendar deadline.
//   - CreatedAt / UpdatedAt: server-assigned write times (UTC), not client
//     clocks, so ordering stays consistent across devices with clock drift.
//   - DeletedAt: soft deletion marker.
type Assignment struct {
	ID          string           `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string           `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_assignments"`
	Title       string           `json:"title"       gorm:"type:varchar(255);not null"`
	Description string           `json:"description,omitempty" gorm:"type:text"`
	Subject     string           `json:"subject"     gorm:"type:varchar(128)"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Status      AssignmentStatus `json:"status"      gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','completed')"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Assignment.
func (Assignment) TableName() string { return "assignments" }

// UserProfile is the lazily created per-user profile record (one per
// authenticated user, created on first authenticated touch if absent).
type UserProfile struct {
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);primaryKey"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(128)"`
	Email       string    `json:"email"        gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string { return "user_profiles" }

// AvatarInitial is the single uppercased rune shown in the avatar badge.
func (p UserProfile) AvatarInitial() string {
	for _, r := range p.DisplayName {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// UserSettings stores the per-user AI call configuration consulted by the
// settings resolver. All fields are optional; precedence (custom key+model >
// user default model > app default) is resolved at call time and never
// persisted as a resolved value.
type UserSettings struct {
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);primaryKey"`
	CustomEnabled bool      `json:"custom_enabled" gorm:"not null;default:false"`
	CustomAPIKey  string    `json:"-"              gorm:"type:varchar(255)"`
	CustomModel   string    `json:"custom_model"   gorm:"type:varchar(128)"`
	DefaultModel  string    `json:"default_model"  gorm:"type:varchar(128)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserSettings.
func (UserSettings) TableName() string { return "user_settings" }

// TurnMetrics carries the usage accounting for a single chat turn. Cost is
// kept at full float64 precision; truncation to 4 decimals is a display
// concern only.
type TurnMetrics struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
	Speed            float64 `json:"speed"`
	DurationSeconds  float64 `json:"duration_seconds"`
}

// ChatTurn is one user/assistant exchange in the bounded transcript.
type ChatTurn struct {
	Timestamp   time.Time   `json:"timestamp"`
	UserMessage string      `json:"user_message"`
	AIMessage   string      `json:"ai_message"`
	Metrics     TurnMetrics `json:"metrics"`
}

// UsageTotals is the per-user aggregate accumulated across turns. It is
// authoritative: seeded from persisted state at session start and incremented
// on each successful call, never recomputed from the (truncating) transcript.
type UsageTotals struct {
	TotalCost   float64 `json:"total_cost"`
	TotalTokens int     `json:"total_tokens"`
	Chats       int     `json:"chats"`
}

// Add folds one turn's metrics into the running totals.
func (u *UsageTotals) Add(m TurnMetrics) {
	u.TotalCost += m.TotalCost
	u.TotalTokens += m.TotalTokens
	u.Chats++
}

// StateBlob is a device-local, unversioned key-value record used for the
// persisted transcript, aggregate usage totals, and display preferences.
// Keys are namespaced per user (e.g. "transcript", "usage", "prefs").
type StateBlob struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	Value     []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the database table name for StateBlob.
func (StateBlob) TableName() string { return "state_blobs" }
