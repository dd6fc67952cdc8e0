// Package main is the entrypoint for the CRM API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/businessguru/crm/internal/cache"
	"github.com/businessguru/crm/internal/config"
	"github.com/businessguru/crm/internal/greenapi"
	"github.com/businessguru/crm/internal/handler"
	"github.com/businessguru/crm/internal/mailer"
	"github.com/businessguru/crm/internal/metrics"
	"github.com/businessguru/crm/internal/middleware"
	"github.com/businessguru/crm/internal/repository"
	"github.com/businessguru/crm/internal/server"
	"github.com/businessguru/crm/internal/service"
	"github.com/businessguru/crm/internal/webhook"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Error(
			"failed to connect to MongoDB",
			slog.String("error", sanitizeError(err, cfg.MongoURI)),
			slog.String("mongo_uri", redactURL(cfg.MongoURI)),
		)
		os.Exit(1)
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize WhatsApp gateway client
	gateway := greenapi.NewClient(cfg.GreenAPIBaseURL, cfg.GreenAPIInstanceID, cfg.GreenAPIToken, logger)
	if gateway.Configured() {
		if connected, err := gateway.Connected(ctx); err != nil {
			logger.Warn("could not check WhatsApp gateway state", "error", err)
		} else if !connected {
			logger.Warn("WhatsApp gateway instance is not authorized")
		} else {
			logger.Info("WhatsApp gateway connected")
		}
	} else {
		logger.Warn("WhatsApp gateway not configured, outbound messages disabled")
	}

	// Initialize mailer
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	if !mail.Configured() {
		logger.Warn("SMTP not configured, email notifications disabled")
	}

	// Initialize webhook pipeline
	recorder := metrics.NewInMemory()
	monitor := webhook.NewMonitor()
	processor := webhook.NewProcessor(repo, gateway, cacheClient, monitor, recorder, logger)

	// Initialize services
	enquiryService := service.NewEnquiryService(repo, gateway, recorder, logger)
	clientService := service.NewClientService(repo, repo, gateway, mail, logger)
	authService := service.NewAuthService(repo, mail, cfg.FrontendBaseURL, logger)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	webhookHandler := handler.NewWebhookHandler(processor, monitor, cfg.MaxRequestBodySize, logger)
	enquiryHandler := handler.NewEnquiryHandler(enquiryService, logger)
	clientHandler := handler.NewClientHandler(clientService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	metricsHandler := handler.NewMetricsHandler(recorder)

	// Setup router
	r := setupRouter(h, healthHandler, webhookHandler, enquiryHandler, clientHandler, authHandler, metricsHandler, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("redis", func(ctx context.Context) error { return cacheClient.Close() })
	srv.OnShutdown("mongodb", repo.Close)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	webhookHandler *handler.WebhookHandler,
	enquiryHandler *handler.EnquiryHandler,
	clientHandler *handler.ClientHandler,
	authHandler *handler.AuthHandler,
	metricsHandler *handler.MetricsHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
	}))

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	r.Route("/api", func(r chi.Router) {
		// WhatsApp gateway callbacks
		r.Post("/enquiries/whatsapp/webhook", webhookHandler.Receive)
		r.Get("/enquiries/whatsapp/webhook", webhookHandler.Probe)
		r.Get("/webhook-status", webhookHandler.Status)
		r.Post("/webhook-status/clear", webhookHandler.ClearStatus)

		// Enquiry management
		r.Route("/enquiries", func(r chi.Router) {
			r.Get("/", enquiryHandler.List)
			r.Post("/", enquiryHandler.Create)
			r.Post("/public", enquiryHandler.CreatePublic)
			r.Get("/stats", enquiryHandler.Stats)
			r.Get("/{id}", enquiryHandler.Get)
			r.Put("/{id}", enquiryHandler.Update)
			r.Delete("/{id}", enquiryHandler.Delete)
		})

		// Client management
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", clientHandler.List)
			r.Post("/", clientHandler.Create)
			r.Get("/{id}", clientHandler.Get)
			r.Put("/{id}", clientHandler.Update)
			r.Patch("/{id}/status", clientHandler.UpdateStatus)
			r.Delete("/{id}", clientHandler.Delete)
		})

		// Password reset
		r.Route("/auth", func(r chi.Router) {
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		// In-memory metrics
		r.Get("/metrics", metricsHandler.Metrics)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
