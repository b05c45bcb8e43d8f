// Package services – stats projection
//
// Pure derivation of the dashboard summary from an assignment snapshot. The
// projection never touches storage itself; callers hand it the freshly
// listed (or live-published) snapshot so the numbers always agree with what
// the user sees.

package services

import (
	"time"

	"github.com/tbourn/go-study-backend/internal/domain"
)

// recentActivityLimit caps the dashboard's recent-activity strip.
const recentActivityLimit = 5

// StatsSummary is the dashboard projection of an assignment snapshot.
type StatsSummary struct {
	Total          int                 `json:"total"`
	Active         int                 `json:"active"`
	CompletedToday int                 `json:"completed_today"`
	RecentActivity []domain.Assignment `json:"recent_activity"`
}

// Summarize derives the dashboard counts from a snapshot ordered most
// recently updated first. "Completed today" means the assignment is
// completed and its last update falls on the same calendar day as now, in
// now's location; records with a zero update time never qualify.
func Summarize(items []domain.Assignment, now time.Time) StatsSummary {
	sum := StatsSummary{Total: len(items)}

	for _, a := range items {
		switch {
		case a.Status == domain.StatusPending:
			sum.Active++
		case a.Status == domain.StatusCompleted && completedToday(a, now):
			sum.CompletedToday++
		}
	}

	n := len(items)
	if n > recentActivityLimit {
		n = recentActivityLimit
	}
	sum.RecentActivity = make([]domain.Assignment, n)
	copy(sum.RecentActivity, items[:n])
	return sum
}

func completedToday(a domain.Assignment, now time.Time) bool {
	if a.UpdatedAt.IsZero() {
		return false
	}
	y1, m1, d1 := a.UpdatedAt.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
