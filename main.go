package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"stylar-exchange/config"
	"stylar-exchange/handlers"
	"stylar-exchange/middleware"
	"stylar-exchange/services"
	"stylar-exchange/storage"
	"stylar-exchange/storage/gormstore"
	"stylar-exchange/storage/memory"
	"stylar-exchange/storage/remote"
	"stylar-exchange/utils"
	"stylar-exchange/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open store")
	}
	logrus.Infof("🗄️  Store backend: %s", cfg.StoreBackend)

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.BodyLimitMB * 1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(middleware.MetricsMiddleware())

	// 🔐 Gateway auth for everything but health and metrics
	app.Use(middleware.GatewayAuthMiddleware(cfg.GatewayToken, "/health", "/metrics"))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400,
	}))

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize image uploads")
	}
	if !cfg.R2.Enabled() {
		app.Static("/uploads", cfg.UploadDir)
	}

	badgeService := services.NewBadgeService(store)
	userService := services.NewUserService(store, cfg.CurrentUserID)
	userService.Badges = badgeService
	stylarService := services.NewStylarService(store, uploader)
	stylarService.Badges = badgeService
	battleService := services.NewBattleService(store, cfg.VoteReward)
	battleService.Badges = badgeService
	challengeService := services.NewChallengeService(store, badgeService)

	handlers.SetupRoutes(app, handlers.Services{
		Stylars:     stylarService,
		Users:       userService,
		Investments: services.NewInvestmentService(store),
		Challenges:  challengeService,
		Battles:     battleService,
		Portfolios:  services.NewPortfolioService(store, userService, badgeService),
		Badges:      badgeService,
	}, cfg.CurrentUserID)

	sched, err := challengeService.StartFinalizeScheduler(ctx, cfg.ChallengeSweepInterval)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start challenge scheduler")
	}

	// Mirror the hosted tables into Postgres when both are configured.
	if cfg.StoreBackend == config.BackendPostgres && cfg.Remote.Enabled() {
		client, err := newRemoteClient(cfg)
		if err != nil {
			logrus.WithError(err).Fatal("failed to create remote client")
		}
		go workers.NewMirrorWorker(remote.NewStore(client), store).Start(ctx, cfg.MirrorInterval)
	}

	go func() {
		<-ctx.Done()
		logrus.Info("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sched.Shutdown(); err != nil {
			logrus.WithError(err).Warn("scheduler shutdown")
		}
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("server shutdown")
		}
	}()

	logrus.Infof("🚀 Server listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRemote:
		client, err := newRemoteClient(cfg)
		if err != nil {
			return nil, err
		}
		return remote.NewStore(client), nil
	case config.BackendPostgres:
		db, err := gormstore.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := gormstore.New(db)
		if err := store.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return store, nil
	default:
		store, err := memory.NewFromFixtures(memory.WithLatency(cfg.MemoryLatency))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func newRemoteClient(cfg config.Config) (*remote.Client, error) {
	return remote.New(remote.Config{
		URL:        cfg.Remote.URL,
		ProjectID:  cfg.Remote.ProjectID,
		PublicKey:  cfg.Remote.PublicKey,
		RateLimit:  cfg.Remote.RateLimit,
		MaxTries:   cfg.Remote.MaxTries,
		HTTPClient: utils.HTTPClient,
	})
}

func newUploader(ctx context.Context, cfg config.Config) (services.ImageUploader, error) {
	if cfg.R2.Enabled() {
		logrus.Info("☁️  Image uploads go to R2")
		r2, err := utils.NewR2Uploader(ctx, utils.R2Options{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			AccessKeySecret: cfg.R2.AccessKeySecret,
			Bucket:          cfg.R2.Bucket,
			CDNBaseURL:      cfg.R2.CDNBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return r2, nil
	}
	logrus.Infof("📁 Image uploads go to %s", cfg.UploadDir)
	local, err := utils.NewLocalUploader(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, err
	}
	return local, nil
}
