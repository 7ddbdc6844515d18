package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gorider/gorider-api/internal/api/handlers"
	"github.com/gorider/gorider-api/internal/api/middleware"
	"github.com/gorider/gorider-api/internal/api/routes"
	"github.com/gorider/gorider-api/internal/config"
	"github.com/gorider/gorider-api/internal/service/gateway"
	"github.com/gorider/gorider-api/internal/service/lifecycle"
	"github.com/gorider/gorider-api/internal/service/notification"
	"github.com/gorider/gorider-api/internal/service/pricing"
	"github.com/gorider/gorider-api/internal/store"
	"github.com/gorider/gorider-api/pkg/auth"
	"github.com/gorider/gorider-api/pkg/cache"
	"github.com/gorider/gorider-api/pkg/database"
	"github.com/gorider/gorider-api/pkg/events"
	"github.com/gorider/gorider-api/pkg/logger"
	"github.com/gorider/gorider-api/pkg/monitoring"
	"github.com/gorider/gorider-api/pkg/websocket"
)

const (
	idempotencyPrefix   = "payment:idempotency"
	reconcileKey        = "reconcile:pending-rides"
	notifyFailureKey    = "notifications:failed"
	redisStatsInterval  = 30 * time.Second
	startupDialDeadline = 15 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting GoRider API",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized successfully",
			logger.String("app_name", cfg.NewRelic.AppName),
			logger.Bool("enabled", true))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize MongoDB
	dialCtx, cancelDial := context.WithTimeout(ctx, startupDialDeadline)
	mongoDB, err := database.NewMongoDB(dialCtx, database.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		MaxPoolSize:    uint64(cfg.Mongo.MaxPoolSize),
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		cancelDial()
		appLogger.Fatal("Failed to connect to MongoDB", logger.Err(err))
	}
	if err := store.EnsureIndexes(dialCtx, mongoDB.DB); err != nil {
		appLogger.Warn("Failed to ensure indexes", logger.Err(err))
	}
	cancelDial()

	appLogger.Info("Connected to MongoDB successfully", logger.String("database", cfg.Mongo.Database))

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	appLogger.Info("Connected to Redis successfully")
	go reportRedisStats(ctx, redisClient, nrApp)

	// Repositories
	users := store.NewUserRepository(mongoDB.DB)
	cars := store.NewCarRepository(mongoDB.DB)
	rides := store.NewPendingRideRepository(mongoDB.DB)
	payments := store.NewPaymentRepository(mongoDB.DB)
	coupons := store.NewCouponRepository(mongoDB.DB)

	// Ride events: live feed plus Kafka when brokers are configured
	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run(ctx)

	publishers := events.Multi{wsHub}
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, appLogger)
		publishers = append(publishers, kafkaPublisher)
		appLogger.Info("Publishing ride events to Kafka",
			logger.Any("brokers", cfg.Kafka.Brokers),
			logger.String("topic", cfg.Kafka.Topic),
		)
	}

	// Notifications
	var sender notification.Sender
	if cfg.Mail.Host != "" {
		sender = notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	} else {
		appLogger.Warn("MAIL_HOST not set, notifications are only logged")
		sender = notification.NewLogSender(appLogger)
	}
	notifyFailures := cache.NewListLog(redisClient, notifyFailureKey, cfg.Notification.FailureLogCap)
	dispatcher := notification.NewDispatcher(sender, users, notifyFailures, nrApp, appLogger, notification.Config{
		Workers:   cfg.Notification.Workers,
		QueueSize: cfg.Notification.QueueSize,
	})
	dispatcher.Start()

	// Payments and the ride lifecycle
	if cfg.Stripe.SecretKey == "" {
		appLogger.Warn("SECRET_KEY_PAYMENT not set, payment intents will fail")
	}
	paymentGateway := gateway.New(gateway.NewStripeIntents(cfg.Stripe.SecretKey), payments, cfg.Stripe.Currency, appLogger)
	reconcileLog := cache.NewListLog(redisClient, reconcileKey, cfg.Cache.ReconcileCap)

	rideService := lifecycle.NewService(lifecycle.Deps{
		Rides:     rides,
		Payments:  paymentGateway,
		Receipts:  dispatcher,
		Events:    publishers,
		Reconcile: reconcileLog,
		APM:       nrApp,
		Logger:    appLogger,
	})

	if cfg.JWT.IssuerKey == "" {
		appLogger.Warn("AUTH_ISSUER_KEY not set, POST /jwt refuses every request")
	}

	// Initialize handlers with dependencies
	h := handlers.NewHandlers(handlers.Deps{
		Users:          users,
		Cars:           cars,
		Coupons:        coupons,
		Rides:          rideService,
		Payments:       paymentGateway,
		Pricing:        pricing.NewService(cars, coupons),
		Notifier:       dispatcher,
		Tokens:         auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry),
		TokenIssuerKey: cfg.JWT.IssuerKey,
		Idempotency:    cache.NewResponseCache(redisClient, idempotencyPrefix, cfg.Cache.TTLIdempotency),
		Reconcile:      reconcileLog,
		NotifyFailures: notifyFailures,
		Hub:            wsHub,
		APM:            nrApp,
		Logger:         appLogger,
	})

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	// Setup all routes
	routes.SetupRoutes(router, h, nrApp.App())

	appLogger.Info("Routes configured successfully")

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown, in reverse order of construction
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	dispatcher.Close()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			appLogger.Error("Failed to close Kafka writer", logger.Err(err))
		}
	}
	stop()

	if err := cache.Close(redisClient); err != nil {
		appLogger.Error("Failed to close Redis", logger.Err(err))
	}
	if err := mongoDB.Close(shutdownCtx); err != nil {
		appLogger.Error("Failed to disconnect MongoDB", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}

// reportRedisStats pushes pool statistics to APM until ctx is done
func reportRedisStats(ctx context.Context, client *redis.Client, nrApp *monitoring.NewRelicApp) {
	if !nrApp.IsEnabled() {
		return
	}
	ticker := time.NewTicker(redisStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			nrApp.RecordRedisPoolStats(cache.GetClientStats(client))
		}
	}
}
