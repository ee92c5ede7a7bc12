package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	contacts "github.com/goliatone/go-contacts"
	"github.com/goliatone/go-contacts/logging"
	"github.com/goliatone/go-contacts/mailer"
	"github.com/goliatone/go-contacts/ratelimit"
	"github.com/goliatone/go-contacts/storage"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := contacts.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger, err := logging.New(*debug)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := contacts.RunMigrations(ctx, db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := contacts.NewRepositoryManager(db)
	repo.MustValidate()

	provider := contacts.NewUserProvider(repo.Users()).WithLogger(logger)
	auther := contacts.NewAuthenticator(provider, cfg).WithLogger(logger)
	codec := contacts.NewVerificationCodec([]byte(cfg.GetVerificationKey()), logger)

	ctrl := contacts.NewHTTPController(
		contacts.WithControllerLogger(logger),
		contacts.WithControllerRepo(repo),
		contacts.WithControllerAuther(auther),
		contacts.WithControllerCodec(codec),
		contacts.WithControllerMailer(buildMailer(cfg)),
		contacts.WithControllerUploader(buildUploader(ctx, cfg, logger)),
		contacts.WithVerificationMaxAge(cfg.GetVerificationMaxAge()),
		contacts.WithControllerDebug(*debug),
	)

	app := contacts.NewServer(contacts.ServerOptions{
		Config:      cfg,
		Controller:  ctrl,
		Validator:   contacts.AccessTokenValidator(auther.TokenService()),
		Limiter:     buildLimiterStore(cfg),
		LimitMax:    cfg.RateLimit.Max,
		LimitWindow: cfg.RateLimit.Window,
		Logger:      logger,
	})

	go func() {
		logger.Info("server listening", "address", cfg.Server.Address)
		if err := app.Listen(cfg.Server.Address); err != nil {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func buildMailer(cfg *contacts.AppConfig) contacts.VerificationMailer {
	switch cfg.Mailer.Driver {
	case "brevo":
		opts := []mailer.BrevoOption{}
		if cfg.Mailer.BaseURL != "" {
			opts = append(opts, mailer.WithBrevoAPIURL(cfg.Mailer.BaseURL))
		}
		return mailer.NewBrevoClient(
			cfg.Mailer.APIKey,
			cfg.Mailer.Sender,
			cfg.Mailer.SenderName,
			cfg.Mailer.ConfirmURL,
			opts...,
		)
	default:
		return mailer.Noop{}
	}
}

func buildUploader(ctx context.Context, cfg *contacts.AppConfig, logger contacts.Logger) contacts.AvatarUploader {
	switch cfg.Storage.Driver {
	case "s3":
		store, err := storage.NewS3Store(ctx, cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.KeyPrefix, cfg.Storage.PublicURL)
		if err != nil {
			logger.Error("failed to initialize object storage, uploads disabled", "error", err)
			return storage.Noop{}
		}
		return store
	default:
		return storage.Noop{}
	}
}

func buildLimiterStore(cfg *contacts.AppConfig) ratelimit.Store {
	if cfg.Redis.Addr == "" {
		return ratelimit.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return ratelimit.NewRedisStore(client, cfg.Redis.Prefix)
}
