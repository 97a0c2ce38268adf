// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gifboard/internal/config"
	"gifboard/internal/featureflags"
	"gifboard/internal/kv"
	"gifboard/internal/middleware"
	"gifboard/internal/models"
	"gifboard/internal/notifications"
	"gifboard/internal/observability"
	"gifboard/internal/seed"
	"gifboard/internal/service"
	"gifboard/internal/store"
	"gifboard/internal/suggest"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	store          *store.Store
	authService    *service.AuthService
	gifService     *service.GIFService
	suggestions    *suggest.Adapter
	sequencer      *suggest.Sequencer
	notifier       *notifications.Notifier
	featureFlags   *featureflags.Manager
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	kv.Init(cfg.RedisURL)
	redisClient := kv.Client()

	st := store.New(redisClient)
	st.Initialize(context.Background())

	var adapter *suggest.Adapter
	if cfg.SuggestBaseURL != "" {
		adapter = suggest.NewAdapter(suggest.NewClient(suggest.ClientConfig{
			BaseURL: cfg.SuggestBaseURL,
			APIKey:  cfg.SuggestAPIKey,
			Model:   cfg.SuggestModel,
		}))
	}

	return newServer(cfg, redisClient, st, adapter), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes Redis and store state.
func NewServerWithDeps(cfg *config.Config, redisClient *redis.Client, st *store.Store, adapter *suggest.Adapter) *Server {
	return newServer(cfg, redisClient, st, adapter)
}

func newServer(cfg *config.Config, redisClient *redis.Client, st *store.Store, adapter *suggest.Adapter) *Server {
	prom := fiberprometheus.New("gifboard-api")

	server := &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: prom,
		store:          st,
		suggestions:    adapter,
		sequencer:      suggest.NewSequencer(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.authService = service.NewAuthService(st, redisClient, service.AdminAccount{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})

	var tg interface {
		TagsForUpload(ctx context.Context, title, description string) []string
	}
	if adapter != nil {
		tg = adapter
	}
	server.gifService = service.NewGIFService(st, tg, server.notifier)

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry tracing
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Gifboard Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// Public browse/search routes
	gifs := api.Group("/gifs")
	gifs.Get("/", s.GetGIFs)
	gifs.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchGIFs)
	gifs.Get("/:id", s.GetGIF)

	// Upload requires a session
	gifs.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "upload"), s.UploadGIF)

	// Categories
	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/:name/gifs", s.GetCategoryGIFs)

	// Suggestions
	suggestGroup := api.Group("/suggest")
	suggestGroup.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "suggest_search"), s.SearchSuggestions)
	suggestGroup.Post("/tags", s.AuthRequired(), s.SuggestTags)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/queue", s.GetModerationQueue)
	admin.Post("/gifs/:id/approve", s.ApproveGIF)
	admin.Post("/gifs/:id/reject", s.RejectGIF)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis being down is
// reported but does not fail readiness: the store keeps serving from memory.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	storageStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			storageStatus = "unhealthy"
		}
	} else {
		storageStatus = "unavailable"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"version": "1.0.0",
		"checks": fiber.Map{
			"storage": storageStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that user claims are available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, _ := c.Locals("isAdmin").(bool)
		if !isAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}
		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		// Parse and validate token
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		// Validate issuer and audience
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "gifboard-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "gifboard-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		isAdmin, _ := claims["adm"].(bool)

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// Store user claims in context
		c.Locals("userID", sub)
		c.Locals("isAdmin", isAdmin)
		if username, usernameOk := claims["username"].(string); usernameOk {
			c.Locals("username", username)
		}
		ctx := context.WithValue(c.UserContext(), observability.UserIDKey, sub)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Gifboard API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Unmatched routes and handler-raised fiber errors keep their
			// status; everything else is a 500.
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code := "REQUEST_ERROR"
				if fe.Code == fiber.StatusNotFound {
					code = "NOT_FOUND"
				}
				return models.RespondWithError(c, fe.Code,
					&models.AppError{Code: code, Message: fe.Message})
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Keep the moderation queue gauge current from published events.
	observability.ModerationQueueDepth.Set(float64(s.gifService.PendingCount()))
	if s.notifier != nil {
		if err := s.notifier.StartSubscriber(s.shutdownCtx, func(notifications.Event) {
			observability.ModerationQueueDepth.Set(float64(s.gifService.PendingCount()))
		}); err != nil {
			log.Printf("failed to start moderation subscriber: %v", err)
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

// Categories returns the browsable category list.
func (s *Server) Categories() []models.Category {
	return seed.Categories()
}
