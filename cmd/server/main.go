// @title        Account Service API
// @version      1.0
// @description  User registration, email verification and profile pictures.
// @BasePath     /
// @securityDefinitions.basic  BasicAuth
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Bearer token issued by POST /v1/user/token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/cloudnative/account-service/internal/api"
	"github.com/cloudnative/account-service/internal/api/handler"
	"github.com/cloudnative/account-service/internal/api/metrics"
	"github.com/cloudnative/account-service/internal/core/service"
	"github.com/cloudnative/account-service/internal/infrastructure/config"
	mongodb "github.com/cloudnative/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/cloudnative/account-service/internal/infrastructure/db/redis"
	"github.com/cloudnative/account-service/internal/infrastructure/queue"
	"github.com/cloudnative/account-service/internal/infrastructure/security"
	"github.com/cloudnative/account-service/internal/infrastructure/storage"
	"github.com/cloudnative/account-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("account service stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "account-service",
	})

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer disconnect(log, "mongodb", func(ctx context.Context) error { return mongoClient.Disconnect(ctx) })

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer disconnect(log, "redis", func(context.Context) error { return rdb.Close() })

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Timeout:   cfg.S3.Timeout,
	})
	if err != nil {
		return err
	}

	accounts := mongodb.NewAccountRepository(db)
	recorder := metrics.NewRecorder()
	hasher := security.NewBcryptHasher(0)

	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, cfg.Notify.Buffer, redisdb.NewPublisher(rdb), logger.Component(log, "dispatcher"))
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Stop()

	// --- Core ---
	pictures := service.NewProfileAssetManager(
		accounts,
		mongodb.NewAssetRepository(db),
		store,
		recorder,
		logger.Component(log, "profile_assets"),
	)
	accountService := service.NewAccountService(
		accounts,
		service.NewVerificationLedger(mongodb.NewTokenRepository(db), cfg.Verification.Window),
		pictures,
		hasher,
		dispatcher,
		recorder,
		service.AccountServiceConfig{
			VerificationTopic: cfg.Verification.Topic,
			VerifyBaseURL:     cfg.Verification.BaseURL,
		},
		logger.Component(log, "accounts"),
	)
	authService := service.NewAuthService(accounts, hasher, cfg.JWTSecret, cfg.JWTTTL)

	// --- HTTP ---
	dbCheck := func(ctx context.Context) error { return mongodb.Ping(ctx, db) }
	health := handler.NewHealthHandler(dbCheck, map[string]handler.Check{
		"mongodb": dbCheck,
		"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) },
		"s3":      store.Ping,
	})

	e := api.NewRouter(api.Dependencies{
		Accounts:       accountService,
		Auth:           authService,
		Limiter:        redisdb.NewResendThrottle(rdb, cfg.Verification.ResendCooldown),
		Health:         health,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Log:            logger.Component(log, "http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func disconnect(log zerolog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("dependency", name).Msg("disconnect failed")
	}
}
