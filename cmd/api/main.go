package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/nagoyameshi/backend/internal/adapters/cache"
	"github.com/nagoyameshi/backend/internal/adapters/database"
	"github.com/nagoyameshi/backend/internal/adapters/events"
	"github.com/nagoyameshi/backend/internal/adapters/providers/billing"
	"github.com/nagoyameshi/backend/internal/adapters/providers/qrcode"
	"github.com/nagoyameshi/backend/internal/adapters/search"
	"github.com/nagoyameshi/backend/internal/api/handlers"
	"github.com/nagoyameshi/backend/internal/api/routes"
	"github.com/nagoyameshi/backend/internal/application/services"
	"github.com/nagoyameshi/backend/internal/domain/providers"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	"github.com/nagoyameshi/backend/internal/infrastructure/auth"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/postgres"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/redis"
	"github.com/nagoyameshi/backend/internal/infrastructure/clients/typesense"
	"github.com/nagoyameshi/backend/internal/infrastructure/notifications"
	"github.com/nagoyameshi/backend/internal/infrastructure/observability"
	"github.com/nagoyameshi/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
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
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis backs the read cache and the default event bus; the API runs without it.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("connected to Redis")
		}
	}

	var searchIndex repositories.RestaurantSearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, searching the database")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchIndex = adapter
		}
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Adapters
	userAdapter := database.NewUserAdapter(pgClient)
	restaurantAdapter := database.NewRestaurantAdapter(pgClient)
	reviewAdapter := database.NewReviewAdapter(pgClient)
	favoriteAdapter := database.NewFavoriteAdapter(pgClient)
	reservationAdapter := database.NewReservationAdapter(pgClient, metrics)
	if cacheProvider != nil {
		restaurantAdapter = database.NewCachedRestaurantAdapter(restaurantAdapter, cacheProvider, metrics)
		reviewAdapter = database.NewCachedReviewAdapter(reviewAdapter, cacheProvider, metrics)
		log.Info().Msg("restaurant and review reads wrapped with caching layer")
	}

	// Domain events
	var eventBus providers.EventBus
	var publisher providers.EventPublisher
	switch cfg.Events.Backend {
	case "kafka":
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic))
		log.Info().Strs("brokers", cfg.Events.KafkaBrokers).Str("topic", cfg.Events.KafkaTopic).Msg("publishing domain events to Kafka")
	case "redis":
		if redisClient != nil {
			eventBus = events.NewRedisEventBus(redisClient)
			publisher = eventBus
			log.Info().Msg("publishing domain events on Redis pub/sub")
		}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
		log.Info().Msg("domain events disabled")
	}

	var cacheInvalidation *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidation = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidation.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
			cacheInvalidation = nil
		}
	}

	var emailSender providers.EmailSender
	if cfg.Email.Configured() {
		emailSender = notifications.NewSMTPSender(&cfg.Email)
	} else {
		log.Warn().Msg("SMTP_HOST not set, login notices are not sent")
	}

	location := cfg.App.Location()
	billingProvider, err := billing.NewSubscriptionProvider(billing.ProviderConfig{
		StripeSecretKey: cfg.Billing.SecretKey,
		AllowMock:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure billing provider")
	}

	// Services
	subscriptionService := services.NewSubscriptionService(billingProvider, userAdapter, publisher, metrics, services.BillingSettings{
		PriceID:    cfg.Billing.PriceID,
		BaseURL:    cfg.App.BaseURL,
		CancelURL:  cfg.Billing.DefaultRedirectURL,
		PremiumURL: cfg.Billing.PremiumURL,
	})
	favoriteService := services.NewFavoriteService(favoriteAdapter, restaurantAdapter, subscriptionService, publisher)
	restaurantService := services.NewRestaurantService(restaurantAdapter, reviewAdapter, favoriteService, searchIndex)
	reviewService := services.NewReviewService(reviewAdapter, restaurantAdapter, subscriptionService, publisher, location)
	reservationService := services.NewReservationService(
		reservationAdapter,
		restaurantAdapter,
		subscriptionService,
		services.NewReservationValidator(location),
		qrcode.NewGenerator(0),
		publisher,
		metrics,
		cfg.App.BaseURL,
	)
	authService := services.NewAuthService(
		userAdapter,
		auth.NewPasswordHasher(bcrypt.DefaultCost),
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		emailSender,
		cfg.Email.From,
		location,
		favoriteService,
		reservationService,
		subscriptionService,
	)

	router := routes.NewRouter(
		handlers.NewAuthHandler(authService),
		handlers.NewRestaurantHandler(restaurantService),
		handlers.NewReviewHandler(reviewService),
		handlers.NewFavoriteHandler(favoriteService),
		handlers.NewReservationHandler(reservationService, location),
		handlers.NewSubscriptionHandler(subscriptionService, cfg.Billing.DefaultRedirectURL, cfg.Billing.PremiumURL),
		authService,
		cfg.CORS.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("timezone", location.String()).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if cacheInvalidation != nil {
		cacheInvalidation.Stop()
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("error closing event publisher")
	}

	log.Info().Msg("server stopped")
}
