// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, safe-retry receipts, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-study-backend/internal/auth"
	"github.com/tbourn/go-study-backend/internal/config"
	"github.com/tbourn/go-study-backend/internal/http/handlers"
	"github.com/tbourn/go-study-backend/internal/http/middleware"
	"github.com/tbourn/go-study-backend/internal/openrouter"
	"github.com/tbourn/go-study-backend/internal/repo"
	"github.com/tbourn/go-study-backend/internal/retry"
	"github.com/tbourn/go-study-backend/internal/services"
	"github.com/tbourn/go-study-backend/internal/watch"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, health and metrics endpoints, and then mounts the versioned
// public API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and security headers
//  8. Per API group: auth, then receipt validation (needs the caller
//     identity), then the rate limiter (bypassed on replay)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-Api-Key",
			middleware.HeaderChatKey,
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderChatKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderChatKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (off by default)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← provider/db/hub
	client := openrouter.New(cfg.OpenRouter)

	settingsSvc := &services.SettingsService{
		DB:       db,
		Catalog:  client,
		AppKey:   cfg.OpenRouter.APIKey,
		AppModel: cfg.OpenRouter.DefaultModel,
	}
	usageSvc := &services.UsageService{
		DB:              db,
		PriceInPerMTok:  cfg.OpenRouter.PriceInPerMTok,
		PriceOutPerMTok: cfg.OpenRouter.PriceOutPerMTok,
		TranscriptCap:   cfg.Chat.TranscriptCap,
	}
	chatSvc := &services.ChatService{
		DB:             db,
		Client:         client,
		Settings:       settingsSvc,
		Usage:          usageSvc,
		MinPromptRunes: cfg.Chat.MinPromptRunes,
		MaxPromptRunes: cfg.Chat.MaxPromptRunes,
		Cooldown:       cfg.Chat.Cooldown,
		ReceiptTTL:     cfg.Chat.ReceiptTTL,
		Retry: retry.Policy{
			MaxAttempts: cfg.Chat.MaxAttempts,
			BaseDelay:   cfg.Chat.RetryBaseDelay,
		},
	}
	assignSvc := &services.AssignmentService{DB: db, Hub: watch.NewHub()}
	profileSvc := &services.ProfileService{DB: db}

	authClient := auth.NewClient(cfg.Auth)
	verifier := auth.NewVerifier(cfg.Auth)

	h := handlers.New(assignSvc, chatSvc, settingsSvc, usageSvc, profileSvc, authClient, verifier)

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	// Account endpoints: no session required, rate limited by IP. Hidden
	// entirely when no identity provider is configured.
	if h.AuthEnabled() {
		authGroup := groupWithPrefix(r, cfg.APIBasePath).Group("/auth")
		authGroup.Use(rl.Handler())
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/reset", h.RequestPasswordReset)
		}
	}

	// Public API. The receipt validator needs the authenticated identity, so
	// it sits after Auth; replays it flags skip the rate limiter.
	devFallback := !h.AuthEnabled() && cfg.Auth.JWTSecret == ""
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Auth(verifier, devFallback))
	api.Use(middleware.ReceiptValidator(
		func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetChatReceipt(ctx, db, userID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))
	api.Use(rl.Handler())
	{
		// Assignments
		api.POST("/assignments", h.CreateAssignment)
		api.GET("/assignments", h.ListAssignments)
		api.GET("/assignments/search", h.SearchAssignments)
		api.GET("/assignments/stream", h.StreamAssignments)
		api.PATCH("/assignments/:id/toggle", h.ToggleAssignment)
		api.DELETE("/assignments/:id", h.DeleteAssignment)

		// Stats
		api.GET("/stats", h.GetStats)

		// Chat
		api.POST("/chat/message", h.SendMessage)
		api.GET("/chat/transcript", h.GetTranscript)
		api.GET("/chat/usage", h.GetUsage)

		// Settings and preferences
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
		api.GET("/settings/models", h.ListModels)
		api.GET("/prefs", h.GetPrefs)
		api.PUT("/prefs", h.PutPrefs)

		// Profile
		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.RenameProfile)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
