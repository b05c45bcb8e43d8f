// Chat HTTP handlers.
//
// This file exposes the chat endpoints:
//   - POST /chat/message     (send a prompt, get the completed turn)
//   - GET  /chat/transcript  (reload the persisted turn ring)
//   - GET  /chat/usage       (running usage totals)
//
// Sends may carry an X-Chat-Key header (validated upstream) making them
// safely retryable: a retransmission replays the recorded turn without
// calling the provider or billing again.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-study-backend/internal/domain"
	"github.com/tbourn/go-study-backend/internal/http/middleware"
	"github.com/tbourn/go-study-backend/internal/openrouter"
	"github.com/tbourn/go-study-backend/internal/services"
)

// ChatService defines the chat operations consumed by HTTP handlers.
type ChatService interface {
	Send(ctx context.Context, userID, prompt, receiptKey string) (*services.SendResult, error)
}

// UsageService exposes the transcript and totals read paths plus the
// display-preference blob.
type UsageService interface {
	Transcript(ctx context.Context, userID string) ([]domain.ChatTurn, error)
	Totals(ctx context.Context, userID string) (domain.UsageTotals, error)
	Prefs(ctx context.Context, userID string) (json.RawMessage, error)
	PutPrefs(ctx context.Context, userID string, prefs json.RawMessage) error
}

// SendMessageRequest is the JSON payload for a chat send.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required" example:"Explain photosynthesis in two sentences"`
}

// TranscriptResponse wraps the persisted turn ring.
type TranscriptResponse struct {
	Turns []domain.ChatTurn `json:"turns"`
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a chat message
// @Description Runs one chat turn: validates the prompt, calls the inference provider with retry, and returns the completed turn with usage accounting.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       X-Chat-Key  header  string  false  "Safe-retry key; retransmissions replay without re-billing"
// @Param       body        body    handlers.SendMessageRequest  true  "Prompt"
// @Success     200  {object}  services.SendResult
// @Failure     400  {object}  handlers.ErrorResponse "Invalid prompt"
// @Failure     402  {object}  handlers.ErrorResponse "Out of credits"
// @Failure     429  {object}  handlers.ErrorResponse "Cooldown or provider rate limit"
// @Failure     502  {object}  handlers.ErrorResponse "Provider failure"
// @Router      /chat/message [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	key, _ := middleware.ChatKey(c)
	res, err := h.chatSvc.Send(c.Request.Context(), userID(c), req.Message, key)
	if err != nil {
		writeChatError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// writeChatError maps send-pipeline failures onto HTTP responses with
// display-safe messages.
func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyPrompt):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is empty")
	case errors.Is(err, services.ErrPromptTooShort):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is too short")
	case errors.Is(err, services.ErrPromptTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is too long")
	case errors.Is(err, services.ErrCooldown):
		fail(c, http.StatusTooManyRequests, ErrCodeCooldown, "please wait a moment before sending again")
	case errors.Is(err, services.ErrBusy):
		fail(c, http.StatusTooManyRequests, ErrCodeCooldown, "a message is already being processed")
	default:
		status, code, msg := classifyProviderError(err)
		fail(c, status, code, msg)
	}
}

func classifyProviderError(err error) (int, string, string) {
	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		switch apiErr.Class {
		case openrouter.ClassRateLimited:
			status = http.StatusTooManyRequests
		case openrouter.ClassQuotaExceeded:
			status = http.StatusPaymentRequired
		case openrouter.ClassInvalidCredential:
			status = http.StatusUnauthorized
		case openrouter.ClassModelUnavailable:
			status = http.StatusBadGateway
		}
		return status, ErrCodeChatFailed, apiErr.UserMessage()
	}
	if openrouter.IsNetwork(err) {
		return http.StatusBadGateway, ErrCodeChatFailed, "the assistant is unreachable right now, please try again"
	}
	return http.StatusInternalServerError, ErrCodeInternal, err.Error()
}

// GetTranscript godoc
// @ID          getTranscript
// @Summary     Reload the chat transcript
// @Description Returns the persisted turn ring, oldest first.
// @Tags        Chat
// @Produce     json
// @Success     200  {object}  handlers.TranscriptResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chat/transcript [get]
func (h *Handlers) GetTranscript(c *gin.Context) {
	turns, err := h.usageSvc.Transcript(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, TranscriptResponse{Turns: turns})
}

// GetUsage godoc
// @ID          getUsage
// @Summary     Running usage totals
// @Description Returns the user's accumulated cost, tokens, and chat count.
// @Tags        Chat
// @Produce     json
// @Success     200  {object}  domain.UsageTotals
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chat/usage [get]
func (h *Handlers) GetUsage(c *gin.Context) {
	totals, err := h.usageSvc.Totals(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, totals)
}
