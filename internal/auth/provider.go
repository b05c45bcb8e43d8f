package auth

// Client proxies the identity provider's REST account endpoints. The backend
// never stores passwords; it forwards credentials to the provider and relays
// the minted session token back to the caller.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tbourn/go-study-backend/internal/config"
)

// Session is the provider's view of an authenticated account.
type Session struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Client talks to the identity provider over HTTPS.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs a provider client from configuration.
func NewClient(cfg config.AuthConfig) *Client {
	return &Client{
		baseURL: cfg.ProviderURL,
		apiKey:  cfg.ProviderKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether a provider endpoint is configured. When it is not,
// the HTTP layer hides the account endpoints entirely.
func (c *Client) Enabled() bool { return c.baseURL != "" }

// SignUp creates a new account with the provider.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.credentialCall(ctx, "accounts:signUp", email, password)
}

// SignIn exchanges credentials for a session token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.credentialCall(ctx, "accounts:signInWithPassword", email, password)
}

// SendPasswordReset asks the provider to email a reset link. The provider's
// response body is ignored on success; callers report a generic confirmation
// regardless, so the endpoint does not leak which addresses are registered.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"requestType": "PASSWORD_RESET", "email": email}
	_, err := c.post(ctx, "accounts:sendOobCode", body)
	return err
}

func (c *Client) credentialCall(ctx context.Context, op, email, password string) (*Session, error) {
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	raw, err := c.post(ctx, op, body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		LocalID   string `json:"localId"`
		Email     string `json:"email"`
		IDToken   string `json:"idToken"`
		ExpiresIn string `json:"expiresIn"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("auth: decode provider response: %w", err)
	}

	ttl, _ := strconv.ParseInt(payload.ExpiresIn, 10, 64)
	return &Session{
		UserID:    payload.LocalID,
		Email:     payload.Email,
		Token:     payload.IDToken,
		ExpiresIn: ttl,
	}, nil
}

func (c *Client) post(ctx context.Context, op string, body any) ([]byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("auth: encode request: %w", err)
	}

	url := c.baseURL + "/" + op
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth: read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			return nil, newError(envelope.Error.Message)
		}
		return nil, &Error{Code: "PROVIDER_ERROR", Message: "Sign-in failed. Please try again."}
	}
	return raw, nil
}
