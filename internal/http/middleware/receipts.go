// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements safe-retry support for chat sends. Clients attach an
// X-Chat-Key header to POSTs that must not double-bill on retransmission;
// the middleware validates the key, stashes it in the context, and, when a
// completed receipt already exists for (user, key), flags the request as a
// replay so the rate limiter lets it through without consuming tokens.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderChatKey is the request header carrying the client's safe-retry key
// for a chat send. The value must be stable across retries of the same
// logical message.
const HeaderChatKey = "X-Chat-Key"

const (
	ctxKeyChatKey    = "chat.key"
	ctxKeyChatReplay = "chat.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// chatKeyPattern restricts keys to an RFC-7230-ish token alphabet.
var chatKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// maxChatKeyLen caps accepted key length.
const maxChatKeyLen = 200

// ChatKey returns the validated safe-retry key stashed by ReceiptValidator.
func ChatKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyChatKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request retransmits an already completed
// send. Handlers still serve the replay themselves; the flag exists so
// transport-level gates (rate limiting) step aside.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyChatReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ReceiptLookup answers whether a non-expired receipt exists for (userID,
// key) at the given time. Lookup failures must not block processing; return
// an error only for diagnostics.
type ReceiptLookup func(ctx context.Context, userID, key string, now time.Time) (bool, error)

// ReceiptValidator validates the X-Chat-Key header when present, stashes the
// normalized key, and marks detected replays for rate-limit bypass. Requests
// without the header pass through untouched; malformed keys are rejected
// with 400 before any handler runs.
func ReceiptValidator(lookup ReceiptLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderChatKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxChatKeyLen || !chatKeyPattern.MatchString(key) {
			rid, _ := c.Get(requestIDKey)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": asString(rid),
				"code":       "bad_chat_key",
				"message":    "invalid " + HeaderChatKey,
			})
			return
		}

		c.Set(ctxKeyChatKey, key)

		if lookup != nil {
			if exists, _ := lookup(c.Request.Context(), UserID(c), key, time.Now().UTC()); exists {
				c.Set(ctxKeyChatReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
