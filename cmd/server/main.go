// @title           Freelance Marketplace API
// @version         1.0.0
// @description     Backend API for a freelance marketplace. Clients post projects, freelancers bid, clients accept a bid and rate the work on completion. Payments are collected through Stripe payment intents.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freelance-backend/internal/config"
	"freelance-backend/internal/database"
	"freelance-backend/internal/database/memory"
	"freelance-backend/internal/idempotency"
	"freelance-backend/internal/logger"
	"freelance-backend/internal/processor"
	"freelance-backend/internal/server"
	"freelance-backend/internal/services"
	"freelance-backend/internal/supabase"
	"freelance-backend/internal/telemetry"
)

type store interface {
	services.Store
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "freelance-backend", cfg.OTELEndpoint)
	if err != nil {
		lg.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	var db store
	if cfg.DatabaseURL != "" {
		dbClient, err := database.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer dbClient.Close()

		if err := database.NewMigrator(dbClient.DB(), lg).Run(ctx); err != nil {
			lg.Fatal("migration failed", zap.Error(err))
		}
		db = dbClient
	} else {
		lg.Warn("DATABASE_URL not set, using in-memory store")
		db = memory.New()
	}

	var identitySource services.IdentitySource
	if cfg.SupabaseURL != "" {
		directory, err := supabase.NewAuthDirectory(cfg)
		if err != nil {
			lg.Fatal("failed to initialize supabase client", zap.Error(err))
		}
		identitySource = directory
	} else {
		lg.Warn("SUPABASE_URL not set, only known users can sign in")
	}

	var locker services.IntentLocker
	if cfg.RedisURL != "" {
		rdb, err := idempotency.NewRedisClient(cfg.RedisURL)
		if err != nil {
			lg.Fatal("failed to initialize redis client", zap.Error(err))
		}
		defer rdb.Close()
		locker = idempotency.NewIntentLock(rdb, cfg.IntentLockTTL, lg)
	}

	stripeClient := processor.NewStripeClient(processor.Config{
		SecretKey: cfg.StripeSecretKey,
		APIURL:    cfg.StripeAPIURL,
	}, lg)

	router := server.NewRouter(server.Deps{
		Config:      cfg,
		Logger:      lg,
		DB:          db,
		Identity:    services.NewIdentityService(db, identitySource, lg),
		Marketplace: services.NewMarketplaceService(db, lg),
		Payments: services.NewPaymentService(db, stripeClient, locker, services.PaymentConfig{
			Currency: cfg.PaymentCurrency,
			Timeout:  cfg.PaymentTimeout,
		}, lg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
