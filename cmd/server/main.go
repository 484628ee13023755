package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mbarathm345672005/docuflow/internal/auth"
	"github.com/Mbarathm345672005/docuflow/internal/config"
	"github.com/Mbarathm345672005/docuflow/internal/export"
	"github.com/Mbarathm345672005/docuflow/internal/httpapi"
	"github.com/Mbarathm345672005/docuflow/internal/notify"
	"github.com/Mbarathm345672005/docuflow/internal/otp"
	"github.com/Mbarathm345672005/docuflow/internal/repository"
	"github.com/Mbarathm345672005/docuflow/internal/storage"
	"github.com/Mbarathm345672005/docuflow/internal/workflow"
	"github.com/Mbarathm345672005/docuflow/pkg/database"
	"github.com/Mbarathm345672005/docuflow/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// A local .env overrides nothing already in the environment.
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting document approval workflow service",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	userRepo := repository.NewUserRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	adminRepo := repository.NewAdminRepository(db.DB, logger)

	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.Auth.AdminPassword)
		if err != nil {
			logger.Fatal("Failed to hash admin credential", zap.Error(err))
		}
		if err := adminRepo.Seed(cfg.Auth.AdminUsername, hash); err != nil {
			logger.Fatal("Failed to seed admin account", zap.Error(err))
		}
	}

	// Object store
	var store storage.ObjectStore
	var staticFilesDir string
	switch cfg.Storage.Backend {
	case "gcs":
		store, err = storage.NewGCSStore(ctx, cfg.Storage.GCSBucket, logger)
		if err != nil {
			logger.Fatal("Failed to initialize object store", zap.Error(err))
		}
	default:
		local, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Server.BaseURL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize object store", zap.Error(err))
		}
		store = local
		staticFilesDir = local.BaseDir()
	}

	// Notification gateway: SMTP, optionally mirrored to the Lark ops chat
	var notifier notify.Notifier = notify.NewMailer(notify.MailerConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		SenderName: cfg.SMTP.SenderName,
	}, logger)
	if cfg.LarkEnabled() {
		notifier = notify.Fanout{notifier, notify.NewLarkNotifier(notify.LarkConfig{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			ChatID:    cfg.Lark.ChatID,
		}, logger)}
	}

	dispatcher := notify.NewDispatcher(notifier, cfg.Notify.QueueSize, cfg.Notify.SendTimeout, logger)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// OTP store with TTL and background sweep
	otpStore := otp.NewStore(cfg.OTP.TTL)
	otpStore.StartSweeper(cfg.OTP.SweepInterval, ctx.Done())
	otpService := otp.NewService(otpStore, userRepo, notifier, logger)

	// Core services
	engine := workflow.NewEngine(documentRepo, userRepo, store, dispatcher, logger)
	authService := auth.NewService(userRepo, adminRepo, cfg.Auth.JWTSecret, logger)
	register := export.NewRegister(logger)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers := httpapi.NewHandlers(engine, authService, otpService, register, logger)
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		StaticFilesDir: staticFilesDir,
	}, handlers, logger)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
