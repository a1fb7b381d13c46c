package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wefix.backend/internal/config"
	"wefix.backend/internal/domain/repositories"
	"wefix.backend/internal/infrastructure/models"
	"wefix.backend/internal/infrastructure/notifier"
	infrarepos "wefix.backend/internal/infrastructure/repositories"
	"wefix.backend/internal/infrastructure/stores"
	"wefix.backend/internal/interfaces/http/handlers"
	"wefix.backend/internal/interfaces/http/middleware"
	"wefix.backend/internal/usecases"
	"wefix.backend/pkg/logger"
	"wefix.backend/pkg/metrics"
	"wefix.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	migrateDB   = func(db *gorm.DB) error { return db.AutoMigrate(&models.Account{}) }
	runServer   = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB    = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	newRegistry = func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", zap.Error(err))
		return fmt.Errorf("invalid configuration: %w", err)
	}

	redisEnabled := cfg.Verification.Store == config.StoreRedis
	if redisEnabled {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(ctx, "Database not available, account endpoints will return errors", zap.Error(err))
	} else if cfg.Database.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(ctx, "Database migrated")
	}

	reg := newRegistry()
	verificationMetrics, err := metrics.NewVerification(metrics.Options{Registerer: reg, Gatherer: reg})
	if err != nil {
		return fmt.Errorf("failed to register verification metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: reg})
	if err != nil {
		return fmt.Errorf("failed to register http metrics: %w", err)
	}

	// Initialize repositories
	accountRepo := infrarepos.NewAccountRepository(db)
	verificationStore := newVerificationStore(cfg.Verification)
	codeNotifier := newNotifier(cfg)

	// Initialize usecases
	verificationUsecase := usecases.NewVerificationUsecase(
		verificationStore,
		accountRepo,
		codeNotifier,
		verificationMetrics,
		usecases.VerificationOptions{
			CodeTTL:           cfg.Verification.CodeTTL,
			MaxAttempts:       cfg.Verification.MaxAttempts,
			ResendCooldown:    cfg.Verification.ResendCooldown,
			DeterministicCode: cfg.Verification.DeterministicCode,
			TestCode:          cfg.Verification.TestCode,
			BcryptCost:        cfg.Verification.BcryptCost,
			CountryCode:       cfg.Verification.DefaultCountryCode,
		},
	)
	accountUsecase := usecases.NewAccountUsecase(accountRepo, verificationUsecase, cfg.Verification.DefaultCountryCode)

	// Initialize handlers
	returnCode := cfg.Verification.ReturnCodeToClient
	accountHandler := handlers.NewAccountHandler(accountUsecase, returnCode)
	verificationHandler := handlers.NewVerificationHandler(verificationUsecase, returnCode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(httpMetrics.Handler())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r, verificationMetrics)
	registerAPIV1Routes(r, routeDeps{
		accountHandler:      accountHandler,
		verificationHandler: verificationHandler,
		idempotency:         redisEnabled,
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	logger.Info(ctx, "WeFix backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("verification_store", cfg.Verification.Store),
		zap.String("notifier", cfg.Notifier.Kind),
	)
	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func newVerificationStore(cfg config.VerificationConfig) repositories.VerificationStore {
	if cfg.Store == config.StoreRedis {
		return stores.NewRedisVerificationStore(stores.RedisStoreOptions{
			Retention:   cfg.RedisRetention,
			LockTimeout: cfg.LockTimeout,
		})
	}
	return stores.NewMemoryVerificationStore()
}

func newNotifier(cfg *config.Config) repositories.Notifier {
	if cfg.Notifier.Kind == config.NotifierSMS {
		return notifier.NewSMSGatewayNotifier(notifier.SMSGatewayConfig{
			URL:      cfg.Notifier.SMSGatewayURL,
			APIKey:   cfg.Notifier.SMSAPIKey,
			SenderID: cfg.Notifier.SMSSenderID,
			Timeout:  cfg.Notifier.SMSTimeout,
		})
	}
	return notifier.NewLogNotifier(cfg.Verification.DeterministicCode || !cfg.Server.IsProduction())
}
