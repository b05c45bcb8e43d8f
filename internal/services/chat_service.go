// Package services – ChatService
//
// This file implements ChatService, the send pipeline for chat turns:
// prompt validation, per-user cooldown and in-flight gating, settings
// resolution, retried calls to the inference provider with a single
// fallback-relay attempt on connectivity failure, usage accounting, and
// safe-retry receipts so a client retransmission never bills twice.
//
// Observability: Send is OpenTelemetry-instrumented; spans carry the user
// id, resolved credential source, and attempt outcome.

package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/openrouter"
	"github.com/tbourn/go-study-backend/internal/repo"
	"github.com/tbourn/go-study-backend/internal/retry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Completer is the inference transport used by ChatService. The primary path
// is retried; the fallback path is taken once, only when the primary is
// unreachable at the network level.
type Completer interface {
	Complete(ctx context.Context, apiKey, model, message string) (*openrouter.Completion, error)
	CompleteFallback(ctx context.Context, apiKey, model, message string) (*openrouter.Completion, error)
	HasFallback() bool
}

// SendResult carries the outcome of one accepted send.
type SendResult struct {
	Turn     domain.ChatTurn    `json:"turn"`
	Totals   domain.UsageTotals `json:"totals"`
	Replayed bool               `json:"replayed,omitempty"`
}

// ChatService owns the chat send pipeline.
type ChatService struct {
	DB       *gorm.DB
	Client   Completer
	Settings *SettingsService
	Usage    *UsageService

	MinPromptRunes int
	MaxPromptRunes int
	Cooldown       time.Duration
	Retry          retry.Policy
	ReceiptTTL     time.Duration

	// Now is injectable for tests; zero means time.Now.
	Now func() time.Time

	mu           sync.Mutex
	lastAccepted map[string]time.Time
	inFlight     map[string]bool
}

func (s *ChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Send runs one chat turn for the user. receiptKey, when non-empty, makes
// the send safely retryable: a repeated key within the receipt window
// replays the recorded turn without calling the provider or billing again.
func (s *ChatService) Send(ctx context.Context, userID, prompt, receiptKey string) (*SendResult, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	switch n := utf8.RuneCountInString(prompt); {
	case n < s.MinPromptRunes:
		return nil, ErrPromptTooShort
	case s.MaxPromptRunes > 0 && n > s.MaxPromptRunes:
		return nil, ErrPromptTooLong
	}

	if receiptKey != "" {
		if res, ok := s.replay(ctx, userID, receiptKey); ok {
			span.SetAttributes(attribute.Bool("chat.replayed", true))
			return res, nil
		}
	}

	if err := s.admit(userID); err != nil {
		return nil, err
	}
	defer s.release(userID)

	resolved := s.Settings.Resolve(ctx, userID)
	span.SetAttributes(attribute.String("chat.credential_source", resolved.Source))

	comp, err := s.complete(ctx, resolved, prompt)
	if err != nil {
		return nil, err
	}

	metrics := domain.TurnMetrics{
		PromptTokens:     comp.Usage.PromptTokens,
		CompletionTokens: comp.Usage.CompletionTokens,
		TotalTokens:      comp.Usage.TotalTokens,
		TotalCost:        s.Usage.Cost(comp.Usage.PromptTokens, comp.Usage.CompletionTokens),
		Speed:            Speed(comp.Usage.CompletionTokens, comp.Duration),
		DurationSeconds:  comp.Duration.Seconds(),
	}
	turn := domain.ChatTurn{
		Timestamp:   s.now().UTC(),
		UserMessage: prompt,
		AIMessage:   comp.Content,
		Metrics:     metrics,
	}

	totals, err := s.Usage.RecordTurn(ctx, userID, turn)
	if err != nil {
		return nil, err
	}

	if receiptKey != "" {
		s.record(ctx, userID, receiptKey, turn)
	}
	return &SendResult{Turn: turn, Totals: totals}, nil
}

// complete runs the retried primary call and, when the final failure is a
// connectivity one, exactly one fallback-relay attempt. Structured provider
// errors never trigger the fallback.
func (s *ChatService) complete(ctx context.Context, resolved Resolved, prompt string) (*openrouter.Completion, error) {
	policy := s.Retry
	if policy.Retryable == nil {
		policy.Retryable = openrouter.IsTransient
	}

	var comp *openrouter.Completion
	err := policy.Do(ctx, func(ctx context.Context) error {
		var cerr error
		comp, cerr = s.Client.Complete(ctx, resolved.APIKey, resolved.Model, prompt)
		return cerr
	})
	if err == nil {
		return comp, nil
	}
	if !openrouter.IsNetwork(err) || !s.Client.HasFallback() {
		return nil, err
	}

	log.Warn().Err(err).Msg("primary inference path unreachable, trying fallback relay")
	comp, ferr := s.Client.CompleteFallback(ctx, resolved.APIKey, resolved.Model, prompt)
	if ferr != nil {
		return nil, err
	}
	return comp, nil
}

// admit enforces the in-flight guard and the cooldown since the last
// accepted send, stamping acceptance on success. Rejected sends leave the
// cooldown clock untouched.
func (s *ChatService) admit(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = make(map[string]bool)
		s.lastAccepted = make(map[string]time.Time)
	}
	if s.inFlight[userID] {
		return ErrBusy
	}
	if last, ok := s.lastAccepted[userID]; ok && s.now().Sub(last) < s.Cooldown {
		return ErrCooldown
	}
	s.inFlight[userID] = true
	s.lastAccepted[userID] = s.now()
	return nil
}

func (s *ChatService) release(userID string) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}

// replay looks up a prior receipt for the key and reproduces its result.
func (s *ChatService) replay(ctx context.Context, userID, key string) (*SendResult, bool) {
	rec, err := repo.GetChatReceipt(ctx, s.DB, userID, key, s.now())
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Str("user_id", userID).Msg("receipt lookup failed")
		}
		return nil, false
	}
	var turn domain.ChatTurn
	if err := json.Unmarshal(rec.Turn, &turn); err != nil {
		return nil, false
	}
	totals, err := s.Usage.Totals(ctx, userID)
	if err != nil {
		return nil, false
	}
	return &SendResult{Turn: turn, Totals: totals, Replayed: true}, true
}

// record persists the receipt for a completed send. A concurrent duplicate
// is benign; other failures are logged and otherwise ignored since the turn
// itself has already been accounted.
func (s *ChatService) record(ctx context.Context, userID, key string, turn domain.ChatTurn) {
	raw, err := json.Marshal(turn)
	if err != nil {
		return
	}
	if _, err := repo.CreateChatReceipt(ctx, s.DB, userID, key, raw, s.ReceiptTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
		log.Warn().Err(err).Str("user_id", userID).Msg("receipt store failed")
	}
}
