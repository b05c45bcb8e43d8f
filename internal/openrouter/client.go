// Package openrouter implements the HTTP client for the hosted inference
// provider: a single-turn chat completion call and the model catalog
// listing. The provider contract is:
//
//	POST {base}/chat/completions   {"model", "messages":[{"role","content"}]}
//	  -> {"choices":[{"message":{"content"}}], "usage":{...}}
//	  or {"error":{"message","code"}} on failure
//	GET  {base}/models             -> {"data":[{id,name,context_length,pricing}]}
//
// The client knows two base URLs: the primary endpoint and an optional
// relay used by the gateway only when the primary transport is unreachable.
// It performs exactly one HTTP attempt per call; retry and fallback routing
// policy live in the chat gateway, not here.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-study-backend/internal/config"
)

// Message is one entry of the chat-completions messages array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage mirrors the provider's token accounting block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of a successful chat call.
type Completion struct {
	Content  string
	Usage    Usage
	Duration time.Duration
}

// Model is one entry of the provider's model catalog.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
	Free          bool   `json:"free"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

type catalogResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ContextLength int    `json:"context_length"`
		Pricing       struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

// Client issues requests against the provider. Safe for concurrent use.
type Client struct {
	baseURL     string
	fallbackURL string
	referer     string
	appTitle    string
	http        *http.Client

	// now is injectable for deterministic duration measurement in tests.
	now func() time.Time
}

// New builds a Client from the provider configuration.
func New(cfg config.OpenRouterConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		fallbackURL: strings.TrimRight(cfg.FallbackURL, "/"),
		referer:     cfg.Referer,
		appTitle:    cfg.AppTitle,
		http:        &http.Client{Timeout: cfg.Timeout},
		now:         time.Now,
	}
}

// HasFallback reports whether an alternate relay path is configured.
func (c *Client) HasFallback() bool { return c.fallbackURL != "" }

// Complete issues one chat-completion attempt over the primary path.
func (c *Client) Complete(ctx context.Context, apiKey, model, message string) (*Completion, error) {
	return c.complete(ctx, c.baseURL, apiKey, model, message)
}

// CompleteFallback issues one chat-completion attempt over the relay path.
// It fails with a NetworkError when no relay is configured, so callers can
// treat "no fallback" and "fallback unreachable" uniformly.
func (c *Client) CompleteFallback(ctx context.Context, apiKey, model, message string) (*Completion, error) {
	if c.fallbackURL == "" {
		return nil, &NetworkError{Err: fmt.Errorf("no fallback transport configured")}
	}
	return c.complete(ctx, c.fallbackURL, apiKey, model, message)
}

func (c *Client) complete(ctx context.Context, base, apiKey, model, message string) (*Completion, error) {
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []Message{{Role: "user", Content: message}},
		Stream:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req, apiKey)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	elapsed := c.now().Sub(start)

	if resp.StatusCode != http.StatusOK {
		return nil, apiErrorFrom(resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &APIError{Class: ClassAPIError, Status: resp.StatusCode, Message: "malformed response body"}
	}
	if len(out.Choices) == 0 {
		return nil, &APIError{Class: ClassAPIError, Status: resp.StatusCode, Message: "empty choices"}
	}

	comp := &Completion{
		Content:  out.Choices[0].Message.Content,
		Duration: elapsed,
	}
	if out.Usage != nil {
		comp.Usage = *out.Usage
	}

	log.Debug().
		Str("model", model).
		Int("prompt_tokens", comp.Usage.PromptTokens).
		Int("completion_tokens", comp.Usage.CompletionTokens).
		Dur("duration", elapsed).
		Msg("chat completion")

	return comp, nil
}

// ListModels fetches the model catalog visible to apiKey. Free-tier entries
// are flagged (zero pricing or an explicit ":free" variant id).
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req, apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiErrorFrom(resp.StatusCode, raw)
	}

	var cat catalogResponse
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, &APIError{Class: ClassAPIError, Status: resp.StatusCode, Message: "malformed catalog body"}
	}

	models := make([]Model, 0, len(cat.Data))
	for _, d := range cat.Data {
		models = append(models, Model{
			ID:            d.ID,
			Name:          d.Name,
			ContextLength: d.ContextLength,
			Free:          isFree(d.ID, d.Pricing.Prompt, d.Pricing.Completion),
		})
	}
	return models, nil
}

func (c *Client) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		req.Header.Set("X-Title", c.appTitle)
	}
}

// apiErrorFrom builds an APIError from a non-2xx response, preferring the
// structured {"error":{...}} body when present.
func apiErrorFrom(status int, raw []byte) *APIError {
	ae := &APIError{Class: classify(status), Status: status}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		ae.Message = env.Error.Message
	}
	if ae.Message == "" && len(raw) > 0 && len(raw) < 512 {
		ae.Message = strings.TrimSpace(string(raw))
	}
	return ae
}

// isFree reports whether a catalog entry is a free-tier model.
func isFree(id, promptPrice, completionPrice string) bool {
	if strings.HasSuffix(id, ":free") {
		return true
	}
	p, perr := strconv.ParseFloat(promptPrice, 64)
	q, qerr := strconv.ParseFloat(completionPrice, 64)
	return perr == nil && qerr == nil && p == 0 && q == 0
}
