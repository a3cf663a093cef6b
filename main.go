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
	"github.com/prohmpiriya/postboard-api/internal/di"
	"github.com/prohmpiriya/postboard-api/internal/handler"
	"github.com/prohmpiriya/postboard-api/internal/metrics"
	"github.com/prohmpiriya/postboard-api/internal/repository"
	"github.com/prohmpiriya/postboard-api/internal/service"
	"github.com/prohmpiriya/postboard-api/migrations"
	"github.com/prohmpiriya/postboard-api/pkg/config"
	"github.com/prohmpiriya/postboard-api/pkg/database"
	"github.com/prohmpiriya/postboard-api/pkg/logger"
	pkgmiddleware "github.com/prohmpiriya/postboard-api/pkg/middleware"
	pkgredis "github.com/prohmpiriya/postboard-api/pkg/redis"
	"github.com/prohmpiriya/postboard-api/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info(fmt.Sprintf("Starting %s (%s)...", cfg.App.Name, cfg.App.Environment))

	ctx := context.Background()

	// Initialize telemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry disabled: %v", err))
	}
	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to register metrics: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	if cfg.Database.AutoMigrate {
		version, err := database.Migrate(migrations.FS, cfg.Database.URL())
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Migration failed: %v", err))
		}
		appLog.Info(fmt.Sprintf("Schema at migration version %d", version))
	}

	// Optional Redis for distributed rate limiting and idempotency
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisCfg := pkgredis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		redisClient, err = pkgredis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis unavailable, falling back to in-process limits: %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info(fmt.Sprintf("Redis connected at %s", redisCfg.Addr()))
		}
	}

	// Domain events
	var publisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka unavailable, domain events disabled: %v", err))
		} else {
			publisher = kafkaPublisher
			appLog.Info(fmt.Sprintf("Publishing domain events to %s", cfg.Kafka.Topic))
		}
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewPostgresUserRepository(db.Pool())
	postRepo := repository.NewPostgresPostRepository(db.Pool())

	// Build dependency injection container
	container, err := di.NewContainer(&di.ContainerConfig{
		ServiceName: cfg.App.Name,
		DB:          db,
		Redis:       redisClient,
		UserRepo:    userRepo,
		PostRepo:    postRepo,
		Publisher:   publisher,
		Auth: &service.AuthServiceConfig{
			JWTSecret:  cfg.JWT.Secret,
			TokenTTL:   cfg.JWT.TokenTTL,
			Issuer:     cfg.JWT.Issuer,
			BcryptCost: cfg.Security.BcryptCost,
		},
		Cookie: handler.CookieConfig{
			Secure: cfg.Cookie.Secure,
			Domain: cfg.Cookie.Domain,
		},
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	corsCfg := pkgmiddleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	rateCfg := pkgmiddleware.DefaultRateLimitConfig()
	rateCfg.RequestsPerSecond = cfg.RateLimit.AuthRequestsPerSecond
	rateCfg.BurstSize = cfg.RateLimit.AuthBurst

	router := di.NewRouter(container, &di.RouterConfig{
		Logger:    appLog,
		CORS:      corsCfg,
		RateLimit: rateCfg,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("%s listening on %s", cfg.App.Name, addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
