package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"game-stats-system/config"
	"game-stats-system/handlers"
	"game-stats-system/middleware"
	"game-stats-system/models"
	"game-stats-system/services"
	"game-stats-system/utils"
	"game-stats-system/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("❌ " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("❌ failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// References are plain ids, so no FK constraints: deleting a game leaves
	// its events and player records in place.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	relations := services.NewRelationService(db, log)
	ledger := services.NewLedgerService(db, relations, log)
	gameService := services.NewGameService(db, log)
	eventService := services.NewEventService(db, ledger, relations, clock, log)
	userService := services.NewUserService(db, log)

	var store services.ObjectStore
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Store(ctx, utils.R2Options{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			AccessKeySecret: cfg.R2.AccessKeySecret,
			Bucket:          cfg.R2.Bucket,
			CDNBaseURL:      cfg.R2.CDNBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client", zap.Error(err))
		}
		store = r2
	} else {
		log.Warn("⚠️  R2 not configured, game stats export disabled")
	}
	exportService := services.NewExportService(db, ledger, store, clock, log)

	if cfg.ReconcileInterval > 0 {
		sched, err := relations.StartReconcileScheduler(cfg.ReconcileInterval)
		if err != nil {
			log.Fatal("failed to start reconcile scheduler", zap.Error(err))
		}
		defer func() { _ = sched.Shutdown() }()
	}

	if cfg.ProfileSync.Enabled() {
		workers.NewUserSyncWorker(db,
			cfg.ProfileSync.URL,
			cfg.ProfileSync.Path,
			cfg.ProfileSync.Token,
			cfg.ProfileSync.Interval,
			log,
		).Start(ctx)
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
		MaxAge:       86400,
	}))

	handlers.SetupHealthRoutes(app)
	handlers.SetupGameRoutes(app, handlers.GameDeps{
		Games:  gameService,
		Events: eventService,
		Ledger: ledger,
		Export: exportService,
		Log:    log,
	})
	handlers.SetupEventRoutes(app, eventService, log)
	handlers.SetupUserRoutes(app, userService, log)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	log.Info("✅ Server running", zap.String("port", cfg.Port), zap.Strings("cors_origins", cfg.AllowedOrigins))

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
