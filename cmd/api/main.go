package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/heidicalls/voicemail-triage/internal/adapters/cache"
	"github.com/heidicalls/voicemail-triage/internal/adapters/classifier"
	"github.com/heidicalls/voicemail-triage/internal/adapters/database"
	"github.com/heidicalls/voicemail-triage/internal/adapters/events"
	"github.com/heidicalls/voicemail-triage/internal/adapters/memory"
	"github.com/heidicalls/voicemail-triage/internal/api/handlers"
	"github.com/heidicalls/voicemail-triage/internal/api/middleware"
	"github.com/heidicalls/voicemail-triage/internal/api/routes"
	"github.com/heidicalls/voicemail-triage/internal/application/services"
	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/clients/llm"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/clients/postgres"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/clients/redis"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/notifications"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/observability"
	"github.com/heidicalls/voicemail-triage/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client. Without a database the service runs on
	// the in-memory store, useful for demos and local development.
	var voicemailRepo repositories.VoicemailRepository
	var alertLog *notifications.AlertLog

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Warn().Err(err).Msg("PostgreSQL unavailable, using in-memory voicemail store")
		voicemailRepo = memory.NewVoicemailStore()
	} else {
		defer pgClient.Close()
		voicemailRepo = database.NewVoicemailAdapter(pgClient)
		alertLog = notifications.NewAlertLog(pgClient.DB())
		log.Info().Msg("PostgreSQL voicemail adapter initialized")
	}

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache and events")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for real-time updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	} else {
		log.Info().Msg("event bus disabled (Redis not available)")
	}

	// Load clinic reference data
	directory, err := services.LoadClinicDirectory(&cfg.Reference)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load clinic reference data")
	}
	log.Info().Int("locations", len(directory.LocationIDs())).Msg("clinic directory loaded")

	// Initialize the classifier. Without an API key the rule-based
	// classifier handles everything locally.
	var triageClassifier providers.Classifier
	if cfg.Classifier.APIKey == "" {
		log.Warn().Msg("CLASSIFIER_API_KEY is not set; using rule-based classifier")
		triageClassifier = classifier.NewRuleBased()
	} else {
		llmClient, err := llm.NewClient(&cfg.Classifier)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize classifier client, falling back to rule-based")
			triageClassifier = classifier.NewRuleBased()
		} else {
			triageClassifier = llmClient
		}
	}

	// Initialize the alert sender. Without a gateway URL alerts are
	// logged instead of delivered.
	var alertSender providers.AlertSender
	if cfg.Alerts.GatewayURL == "" {
		log.Warn().Msg("ALERTS_GATEWAY_URL is not set; using simulated alert sender")
		alertSender = notifications.NewSimulatedSender(cfg.Alerts.ManagerPhone)
	} else {
		gatewaySender, err := notifications.NewGatewaySender(&cfg.Alerts)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize alert gateway, falling back to simulated sender")
			alertSender = notifications.NewSimulatedSender(cfg.Alerts.ManagerPhone)
		} else {
			alertSender = gatewaySender
		}
	}

	// Initialize services
	redactionService := services.NewRedactionService()
	extractionService := services.NewExtractionService(directory)
	routingService := services.NewRoutingService(directory)
	escalationService := services.NewEscalationService(alertSender, cfg.Alerts.ManagerPhone, alertLog)

	triageService := services.NewTriageService(
		triageClassifier,
		redactionService,
		extractionService,
		routingService,
		escalationService,
		voicemailRepo,
	)
	triageService.SetMetrics(metrics)
	if eventBus != nil {
		triageService.SetEventBus(eventBus)
		log.Info().Msg("event bus configured for triage service")
	}

	analyticsService := services.NewAnalyticsService(voicemailRepo, cacheProvider)
	pmsService := services.NewPMSService(voicemailRepo)

	// Initialize handlers
	voicemailHandler := handlers.NewVoicemailHandler(triageService, escalationService, pmsService, voicemailRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Info().Msg("cache middleware initialized")
	}

	// Set up router
	router := routes.NewRouter(
		voicemailHandler,
		analyticsHandler,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
