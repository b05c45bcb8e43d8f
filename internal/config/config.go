// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, rate limiting, chat
// cooldown/retry behavior, the inference provider, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-study-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// OpenRouterConfig holds the inference provider settings: the app's shared
// credential, the default model applied when a user has configured nothing,
// the price table for cost accounting, and the alternate relay path used
// only when the primary transport is unreachable.
type OpenRouterConfig struct {
	BaseURL      string        // OPENROUTER_BASE_URL
	FallbackURL  string        // OPENROUTER_FALLBACK_URL (CORS relay; empty disables the fallback path)
	APIKey       string        // OPENROUTER_API_KEY (shared app key)
	DefaultModel string        // OPENROUTER_DEFAULT_MODEL
	Referer      string        // OPENROUTER_REFERER (HTTP-Referer attribution header)
	AppTitle     string        // OPENROUTER_APP_TITLE (X-Title attribution header)
	Timeout      time.Duration // OPENROUTER_TIMEOUT per-attempt HTTP timeout

	// Price table for the default model, dollars per million tokens.
	PriceInPerMTok  float64 // PRICE_IN_PER_MTOK
	PriceOutPerMTok float64 // PRICE_OUT_PER_MTOK
}

// ChatConfig bounds user-initiated chat requests: input length, the soft
// cooldown between accepted sends, retry attempts, and backoff base delay.
type ChatConfig struct {
	MinPromptRunes int           // CHAT_MIN_PROMPT_RUNES
	MaxPromptRunes int           // CHAT_MAX_PROMPT_RUNES
	Cooldown       time.Duration // CHAT_COOLDOWN between accepted sends
	MaxAttempts    int           // CHAT_MAX_ATTEMPTS direct calls before fallback
	RetryBaseDelay time.Duration // CHAT_RETRY_BASE_DELAY, doubles per attempt
	TranscriptCap  int           // CHAT_TRANSCRIPT_CAP ring size
	ReceiptTTL     time.Duration // CHAT_RECEIPT_TTL safe-retry window
}

// AuthConfig configures verification of session tokens minted by the
// external identity provider, plus the provider REST endpoint proxied by
// the auth handlers.
type AuthConfig struct {
	ProviderURL string // AUTH_PROVIDER_URL identity-provider REST base
	ProviderKey string // AUTH_PROVIDER_KEY provider API key query parameter
	JWTSecret   string // AUTH_JWT_SECRET HMAC secret for session tokens
	TokenTTL    time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath string // SQLite path

	// Rate limiting (HTTP edge, distinct from the chat cooldown)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Domain
	OpenRouter OpenRouterConfig
	Chat       ChatConfig
	Auth       AuthConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "study.db"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Inference provider
		OpenRouter: OpenRouterConfig{
			BaseURL:         getenv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			FallbackURL:     getenv("OPENROUTER_FALLBACK_URL", ""),
			APIKey:          getenv("OPENROUTER_API_KEY", ""),
			DefaultModel:    getenv("OPENROUTER_DEFAULT_MODEL", "anthropic/claude-3.5-sonnet"),
			Referer:         getenv("OPENROUTER_REFERER", "https://studyapp.local"),
			AppTitle:        getenv("OPENROUTER_APP_TITLE", "StudyApp"),
			Timeout:         getdur("OPENROUTER_TIMEOUT", 60*time.Second),
			PriceInPerMTok:  getfloat("PRICE_IN_PER_MTOK", 3.00),
			PriceOutPerMTok: getfloat("PRICE_OUT_PER_MTOK", 15.00),
		},

		// Chat bounds
		Chat: ChatConfig{
			MinPromptRunes: getint("CHAT_MIN_PROMPT_RUNES", 2),
			MaxPromptRunes: getint("CHAT_MAX_PROMPT_RUNES", 2000),
			Cooldown:       getdur("CHAT_COOLDOWN", 2*time.Second),
			MaxAttempts:    getint("CHAT_MAX_ATTEMPTS", 3),
			RetryBaseDelay: getdur("CHAT_RETRY_BASE_DELAY", 500*time.Millisecond),
			TranscriptCap:  getint("CHAT_TRANSCRIPT_CAP", 50),
			ReceiptTTL:     getdur("CHAT_RECEIPT_TTL", 24*time.Hour),
		},

		// Session tokens
		Auth: AuthConfig{
			ProviderURL: getenv("AUTH_PROVIDER_URL", ""),
			ProviderKey: getenv("AUTH_PROVIDER_KEY", ""),
			JWTSecret:   getenv("AUTH_JWT_SECRET", ""),
			TokenTTL:    getdur("AUTH_TOKEN_TTL", 24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-study-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if strings.TrimSpace(cfg.OpenRouter.BaseURL) == "" {
		return cfg, errors.New("OPENROUTER_BASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.OpenRouter.DefaultModel) == "" {
		return cfg, errors.New("OPENROUTER_DEFAULT_MODEL must not be empty")
	}
	if cfg.OpenRouter.PriceInPerMTok < 0 || cfg.OpenRouter.PriceOutPerMTok < 0 {
		return cfg, errors.New("price-per-million values must be >= 0")
	}
	if cfg.Chat.MinPromptRunes < 1 || cfg.Chat.MaxPromptRunes < cfg.Chat.MinPromptRunes {
		return cfg, errors.New("chat prompt bounds must satisfy 1 <= min <= max")
	}
	if cfg.Chat.Cooldown < 0 {
		return cfg, errors.New("CHAT_COOLDOWN must be >= 0")
	}
	if cfg.Chat.MaxAttempts < 1 {
		return cfg, errors.New("CHAT_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.Chat.TranscriptCap < 1 {
		return cfg, errors.New("CHAT_TRANSCRIPT_CAP must be >= 1")
	}
	if cfg.Chat.ReceiptTTL <= 0 {
		return cfg, errors.New("CHAT_RECEIPT_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
