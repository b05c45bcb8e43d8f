// Package services – UsageService
//
// This file implements UsageService, the accounting side of chat: per-turn
// cost and speed derivation, the bounded persisted transcript, and the
// authoritative running totals. The transcript is a ring capped at a fixed
// number of turns and persisted whole on every append; totals are seeded
// from persisted state on first touch and incremented per turn, never
// recomputed from the truncating transcript.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/repo"
)

var (
	chatTurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_turns_total",
		Help: "Completed chat turns recorded.",
	})
	chatTokensTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_tokens_total",
		Help: "Tokens billed across all chat turns.",
	})
	chatCostDollarsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_cost_dollars_total",
		Help: "Accumulated chat cost in dollars.",
	})
)

// UsageService owns per-turn accounting, the bounded transcript, and the
// per-user usage totals.
type UsageService struct {
	DB *gorm.DB

	// Dollars per million tokens for prompt and completion sides.
	PriceInPerMTok  float64
	PriceOutPerMTok float64

	// TranscriptCap bounds the persisted transcript ring.
	TranscriptCap int

	mu     sync.Mutex
	totals map[string]*domain.UsageTotals
}

// Cost prices one turn: tokens divided by a million, times the per-million
// rate, prompt and completion sides summed.
func (s *UsageService) Cost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)/1e6*s.PriceInPerMTok +
		float64(completionTokens)/1e6*s.PriceOutPerMTok
}

// Speed reports completion tokens per second. Non-positive elapsed times
// yield zero rather than an infinity.
func Speed(completionTokens int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(completionTokens) / elapsed.Seconds()
}

// RecordTurn appends one completed turn to the user's transcript ring,
// persists the ring whole, folds the turn into the authoritative totals, and
// returns the updated totals.
func (s *UsageService) RecordTurn(ctx context.Context, userID string, turn domain.ChatTurn) (domain.UsageTotals, error) {
	turns, err := s.Transcript(ctx, userID)
	if err != nil {
		return domain.UsageTotals{}, err
	}
	turns = append(turns, turn)
	if limit := s.TranscriptCap; limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	raw, err := json.Marshal(turns)
	if err != nil {
		return domain.UsageTotals{}, fmt.Errorf("encode transcript: %w", err)
	}
	if err := repo.PutStateBlob(ctx, s.DB, userID, repo.StateKeyTranscript, raw); err != nil {
		return domain.UsageTotals{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	totals, err := s.totalsLocked(ctx, userID)
	if err != nil {
		return domain.UsageTotals{}, err
	}
	totals.Add(turn.Metrics)
	rawTotals, err := json.Marshal(totals)
	if err != nil {
		return domain.UsageTotals{}, fmt.Errorf("encode usage totals: %w", err)
	}
	if err := repo.PutStateBlob(ctx, s.DB, userID, repo.StateKeyUsage, rawTotals); err != nil {
		return domain.UsageTotals{}, err
	}

	chatTurnsTotal.Inc()
	chatTokensTotal.Add(float64(turn.Metrics.TotalTokens))
	chatCostDollarsTotal.Add(turn.Metrics.TotalCost)

	return *totals, nil
}

// Transcript loads the persisted turn ring, oldest first. Absent or
// undecodable state yields an empty transcript.
func (s *UsageService) Transcript(ctx context.Context, userID string) ([]domain.ChatTurn, error) {
	raw, err := repo.GetStateBlob(ctx, s.DB, userID, repo.StateKeyTranscript)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []domain.ChatTurn{}, nil
	}
	var turns []domain.ChatTurn
	if err := json.Unmarshal(raw, &turns); err != nil {
		// Corrupt state resets the transcript rather than wedging chat.
		return []domain.ChatTurn{}, nil
	}
	return turns, nil
}

// Totals returns the user's running usage totals, seeding the in-memory
// aggregate from persisted state on first touch.
func (s *UsageService) Totals(ctx context.Context, userID string) (domain.UsageTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals, err := s.totalsLocked(ctx, userID)
	if err != nil {
		return domain.UsageTotals{}, err
	}
	return *totals, nil
}

// totalsLocked loads or seeds the cached totals for a user. Callers hold mu.
func (s *UsageService) totalsLocked(ctx context.Context, userID string) (*domain.UsageTotals, error) {
	if s.totals == nil {
		s.totals = make(map[string]*domain.UsageTotals)
	}
	if t, ok := s.totals[userID]; ok {
		return t, nil
	}
	t := &domain.UsageTotals{}
	raw, err := repo.GetStateBlob(ctx, s.DB, userID, repo.StateKeyUsage)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, t); err != nil {
			*t = domain.UsageTotals{}
		}
	}
	s.totals[userID] = t
	return t, nil
}

// Prefs returns the user's raw display-preference blob, nil when unset.
func (s *UsageService) Prefs(ctx context.Context, userID string) (json.RawMessage, error) {
	raw, err := repo.GetStateBlob(ctx, s.DB, userID, repo.StateKeyPrefs)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// PutPrefs replaces the user's display-preference blob whole.
func (s *UsageService) PutPrefs(ctx context.Context, userID string, prefs json.RawMessage) error {
	if !json.Valid(prefs) {
		return fmt.Errorf("preferences payload is not valid JSON")
	}
	return repo.PutStateBlob(ctx, s.DB, userID, repo.StateKeyPrefs, prefs)
}
