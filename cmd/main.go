package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	configs "github.com/roomloop/flatmarket/config"
	"github.com/roomloop/flatmarket/internal/handler"
	"github.com/roomloop/flatmarket/internal/middleware"
	"github.com/roomloop/flatmarket/internal/repository"
	"github.com/roomloop/flatmarket/internal/router"
	"github.com/roomloop/flatmarket/internal/service"
	"github.com/roomloop/flatmarket/pkg/cache"
	"github.com/roomloop/flatmarket/pkg/circuit"
	"github.com/roomloop/flatmarket/pkg/database"
	"github.com/roomloop/flatmarket/pkg/gateway"
	"github.com/roomloop/flatmarket/pkg/logger"
	"github.com/roomloop/flatmarket/pkg/redis"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.RunMigrations(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.SeedDefaultAdmin(db, config.App.AdminEmail, config.App.AdminPassword); err != nil {
		// Don't fail - the admin account may already exist
		logger.GetLogger().Error("Failed to seed admin account", zap.Error(err))
	}

	redisClient, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	flatRepo := repository.NewFlatRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Payment gateway client behind a circuit breaker
	gatewayBreaker := circuit.NewBreaker("payment_gateway", circuit.DefaultConfig(), logger.GetLogger())
	gatewayClient := gateway.NewClient(config, gatewayBreaker)

	// Listing cache: redis when enabled, process-local otherwise
	var listingCache service.ListingCache
	if redisClient.IsEnabled() {
		listingCache = service.NewRedisListingCache(redisClient)
	} else {
		listingCache = service.NewMemoryListingCache(cache.NewCache())
	}

	// Services
	sessionService := service.NewSessionService(config)
	userService := service.NewUserService(userRepo)
	flatService := service.NewFlatService(flatRepo, listingCache)
	paymentService := service.NewPaymentService(
		paymentRepo,
		userRepo,
		gatewayClient,
		config.Gateway.KeySecret,
		config.Gateway.Currency,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(userService, sessionService)
	userHandler := handler.NewUserHandler(userService)
	flatHandler := handler.NewFlatHandler(flatService)
	paymentHandler := handler.NewPaymentHandler(paymentService, userService, sessionService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	sessionMiddleware := middleware.NewSessionMiddleware(sessionService)

	r := router.NewRouter(
		authHandler,
		userHandler,
		flatHandler,
		paymentHandler,
		healthHandler,

		sessionMiddleware,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
