package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/config"
	"shopify-integration-service/internal/database"
	"shopify-integration-service/internal/encryption"
	"shopify-integration-service/internal/events"
	"shopify-integration-service/internal/handlers"
	"shopify-integration-service/internal/jobs"
	"shopify-integration-service/internal/locks"
	"shopify-integration-service/internal/middleware"
	"shopify-integration-service/internal/repository"
	"shopify-integration-service/internal/secrets"
	"shopify-integration-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()
	logger := cfg.NewLogger()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Warn("Auto-migration failed")
	}

	ctx := context.Background()

	// Credential backends: GCP Secret Manager, else AES-GCM in the shop row
	var credStore services.CredentialStore
	if cfg.GCPProjectID != "" {
		secretManager, err := secrets.NewGCPSecretManager(ctx, cfg.GCPProjectID)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize GCP Secret Manager")
		} else {
			defer secretManager.Close()
			credStore = secretManager
			logger.Info("GCP Secret Manager initialized")
		}
	}
	var encryptor *encryption.CredentialEncryptor
	if cfg.CredentialsEncryptionKey != "" {
		if encryptor, err = encryption.NewCredentialEncryptor(cfg.CredentialsEncryptionKey); err != nil {
			logger.WithError(err).Fatal("Invalid credentials encryption key")
		}
	}

	// Optional Redis order locks
	var locker locks.Locker = locks.NopLocker{}
	if cfg.RedisURL != "" {
		rdb, err := locks.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to Redis, order locks disabled")
		} else {
			defer rdb.Close()
			locker = locks.NewRedisLocker(rdb)
			logger.Info("Redis order locks enabled")
		}
	}

	// Optional NATS events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize events publisher (events won't be published)")
		} else {
			publisher = natsPublisher
			logger.Info("NATS events publisher initialized")
		}
	}
	defer publisher.Close()

	// Initialize services
	store := repository.NewStore(db)
	shopService := services.NewShopService(store, credStore, encryptor, cfg.ShopifyAPIVersion, logger)
	shopService.SetClientLimits(cfg.ShopifyRateBurst, cfg.ShopifyTimeout)
	logService := services.NewLogService(store.Logs, publisher, logger)
	semaphore := services.NewShopSemaphore(&services.ConcurrencyConfig{
		MaxConcurrentPerShop: cfg.WebhookWorkersPerShop,
		QueueTimeout:         cfg.WebhookQueueTimeout,
	})
	webhookService := services.NewWebhookService(store, shopService, shopService, logService, locker, semaphore, logger)
	syncService := services.NewSyncService(store, shopService, shopService, logService, logger)

	// Payout scheduler
	var payoutJob *jobs.PayoutJob
	if cfg.PayoutSyncEnabled {
		payoutJob = jobs.NewPayoutJob(cfg.PayoutSyncInterval, store.Shops, syncService, logger)
		payoutJob.Start(ctx)
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, webhookService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	shopHandler := handlers.NewShopHandler(shopService)
	logHandler := handlers.NewLogHandler(logService, webhookService)
	syncHandler := handlers.NewSyncHandler(syncService)

	router := setupRouter(cfg, healthHandler, webhookHandler, shopHandler, logHandler, syncHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port": cfg.Port,
			"env":  cfg.Environment,
		}).Info("Shopify Integration Service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if payoutJob != nil {
		if err := payoutJob.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Payout job did not stop in time")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	webhookService.Wait()
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	shopHandler *handlers.ShopHandler,
	logHandler *handlers.LogHandler,
	syncHandler *handlers.SyncHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers middleware
	router.Use(middleware.SecurityHeaders())

	// CORS middleware
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Webhook endpoints - public but with signature verification
	router.POST("/api/v1/webhooks/shopify", webhookHandler.HandleShopifyWebhook)

	// Admin API
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AdminAuth(cfg.AdminToken))
	{
		shops := v1.Group("/shops")
		{
			shops.GET("", shopHandler.List)
			shops.POST("", shopHandler.Create)
			shops.GET("/:id", shopHandler.Get)
			shops.PUT("/:id", shopHandler.Update)
			shops.DELETE("/:id", shopHandler.Delete)
			shops.PUT("/:id/credentials", shopHandler.UpdateCredentials)
			shops.POST("/:id/sync/payouts", syncHandler.SyncPayouts)
			shops.POST("/:id/sync/products", syncHandler.SyncProducts)
		}

		logs := v1.Group("/logs")
		{
			logs.GET("", logHandler.List)
			logs.GET("/:id", logHandler.Get)
			logs.POST("/:id/resync", logHandler.Resync)
		}

		payouts := v1.Group("/payouts")
		{
			payouts.GET("", syncHandler.ListPayouts)
			payouts.GET("/:id", syncHandler.GetPayout)
			payouts.POST("/:id/submit", syncHandler.SubmitPayout)
			payouts.GET("/:id/export", syncHandler.ExportPayout)
		}
	}

	return router
}
