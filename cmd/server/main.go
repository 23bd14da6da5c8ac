package main

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wealthline.backend/internal/config"
	"wealthline.backend/internal/infrastructure/events"
	"wealthline.backend/internal/infrastructure/jobs"
	"wealthline.backend/internal/infrastructure/mailer"
	"wealthline.backend/internal/infrastructure/migrations"
	"wealthline.backend/internal/infrastructure/repositories"
	"wealthline.backend/internal/infrastructure/storage"
	"wealthline.backend/internal/interfaces/http/handlers"
	"wealthline.backend/internal/interfaces/http/middleware"
	"wealthline.backend/internal/usecases"
	"wealthline.backend/pkg/jwt"
	"wealthline.backend/pkg/logger"
	"wealthline.backend/pkg/redis"
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
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	applyMigrations = migrations.Apply
	newSessionStore = redis.NewSessionStore
	newPublisher    = events.New
	runServer       = serveUntilDone
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

const shutdownTimeout = 15 * time.Second

// serveUntilDone listens on port until ctx is cancelled, then drains
// in-flight requests for up to shutdownTimeout.
func serveUntilDone(ctx context.Context, r *gin.Engine, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

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
	defer logger.Sync()
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

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
		logger.Warn(context.Background(), "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Connected to PostgreSQL via GORM")
		if cfg.Database.AutoMigrate {
			if err := applyMigrations(sqlDB); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			logger.Info(context.Background(), "Migrations applied")
		}
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	publisher := newPublisher(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	defer publisher.Close()

	blobs := storage.NewBlobStore(cfg.Storage.Root, cfg.Server.BaseURL, cfg.Storage.SigningSecret)
	mail := mailer.New(cfg.Mail.ResendAPIKey, cfg.Mail.From)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	balanceRepo := repositories.NewBalanceRepository(db)
	userPlanRepo := repositories.NewUserPlanRepository(db)
	investmentRepo := repositories.NewInvestmentRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	uow := repositories.NewUnitOfWork(db)

	holdings := usecases.AdminRepositories{
		Plans:       planRepo,
		Balances:    balanceRepo,
		UserPlans:   userPlanRepo,
		Investments: investmentRepo,
		Profiles:    profileRepo,
	}

	// Usecases
	authz := usecases.NewAdminAuthorizer(adminRepo)
	authUsecase := usecases.NewAuthUsecase(usecases.AuthDependencies{
		Users:    userRepo,
		Profiles: profileRepo,
		Balances: balanceRepo,
		UoW:      uow,
		JWT:      jwtService,
		Sessions: sessionStore,
		OTPs:     redis.NewOTPStore(cfg.OTP.MaxAttempts),
		Resets:   redis.NewTokenStore("reset:"),
		Blobs:    blobs,
		Mail:     mail,
	}, usecases.AuthConfig{
		BaseURL:        cfg.Server.BaseURL,
		OTPTTL:         cfg.OTP.TTL,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	profileUsecase := usecases.NewProfileUsecase(profileRepo, blobs, cfg.Storage.MaxUploadBytes)
	withdrawalUsecase := usecases.NewWithdrawalUsecase(balanceRepo, profileRepo, publisher, usecases.WithdrawalConfig{
		WhatsAppNumber: cfg.Withdrawal.WhatsAppNumber,
		MinAmount:      cfg.Withdrawal.MinAmount,
		FeeAmount:      cfg.Withdrawal.FeeAmount,
	})
	adminUsecase := usecases.NewAdminUsecase(holdings, authz, publisher)
	pagesUsecase := usecases.NewPagesUsecase(holdings, profileUsecase, cfg.Withdrawal.WhatsAppNumber)
	routeGate := usecases.NewRouteGate(authz)

	secure := cfg.Server.IsProduction()

	// Handlers
	authHandler := handlers.NewAuthHandler(authUsecase, secure, cfg.Storage.MaxUploadBytes)
	profileHandler := handlers.NewProfileHandler(profileUsecase, cfg.Storage.MaxUploadBytes)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalUsecase)
	adminHandler := handlers.NewAdminHandler(adminUsecase)
	pagesHandler := handlers.NewPagesHandler(pagesUsecase, withdrawalUsecase, adminUsecase)
	storageHandler := handlers.NewStorageHandler(blobs)

	expiryJob := jobs.NewPlanExpiryJob(userPlanRepo)
	go expiryJob.Start(ctx)
	defer expiryJob.Stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware("/metrics", "/health"))
	r.Use(metrics.Middleware())
	applyCORSMiddleware(r, cfg.Security.TrustedOrigins)
	r.Use(middleware.SessionMiddleware(authUsecase, secure))
	if cfg.Security.CSRFAuthKey != "" {
		csrfKey, err := hex.DecodeString(cfg.Security.CSRFAuthKey)
		if err != nil || len(csrfKey) != 32 {
			return fmt.Errorf("CSRF_AUTH_KEY must be 64 hex characters")
		}
		r.Use(middleware.CSRF(csrfKey, secure, cfg.Security.TrustedOrigins))
	}

	registerHealthRoute(r)
	r.GET("/metrics", middleware.MetricsHandler(registry))
	registerRoutes(r, routeDeps{
		authHandler:       authHandler,
		profileHandler:    profileHandler,
		withdrawalHandler: withdrawalHandler,
		adminHandler:      adminHandler,
		pagesHandler:      pagesHandler,
		storageHandler:    storageHandler,
		routeGate:         middleware.RouteGateMiddleware(routeGate),
		authLimiter:       middleware.NewRateLimiter(middleware.AuthLimit).Middleware(),
	})

	logger.Debug(ctx, "Registered routes", zap.Int("count", len(r.Routes())))

	logger.Info(ctx, "Wealthline backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("base_url", cfg.Server.BaseURL),
	)

	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
