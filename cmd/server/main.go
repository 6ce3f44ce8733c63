package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/pmorrell/minder/internal/auth"
	"github.com/pmorrell/minder/internal/bot"
	"github.com/pmorrell/minder/internal/calendar"
	"github.com/pmorrell/minder/internal/config"
	"github.com/pmorrell/minder/internal/credentials"
	"github.com/pmorrell/minder/internal/database"
	"github.com/pmorrell/minder/internal/health"
	"github.com/pmorrell/minder/internal/models"
	"github.com/pmorrell/minder/internal/notify"
	"github.com/pmorrell/minder/internal/tasks"
	"github.com/pmorrell/minder/internal/telegram"
	"github.com/pmorrell/minder/internal/worker"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Load()

	logger := worker.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if cfg.Env == "development" {
		if err := database.SeedDevData(db); err != nil {
			logger.Warn("Failed to seed dev data", "error", err)
		}
	}

	if cfg.EncryptionKey != "" {
		if err := models.InitEncryption(cfg.EncryptionKey); err != nil {
			logger.Error("Failed to initialize token encryption", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("TOKEN_ENCRYPTION_KEY not set, calendar tokens will be stored in plaintext")
	}

	auth.InitProviders(cfg)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		location = time.UTC
	}

	// Shared collaborators.
	sender := telegram.NewClient(cfg.TelegramBotToken, cfg.StubTelegram)
	events := calendar.NewClient()
	creds := credentials.NewProvider(db, cfg.GoogleClientID, cfg.GoogleClientSecret)
	notifyStore := notify.NewStore(db)
	taskStore := tasks.NewStore(db)

	var guard notify.Guard
	if cfg.SuppressRepeatSends {
		redisGuard, err := notify.NewRedisGuard(cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to create suppression guard", "error", err)
			os.Exit(1)
		}
		defer redisGuard.Close()
		guard = redisGuard
	}

	engine := notify.NewEngine(notify.Config{
		Users:       notifyStore,
		Creds:       creds,
		Events:      events,
		Tasks:       taskStore,
		Sender:      sender,
		Guard:       guard,
		Recorder:    notifyStore,
		Logger:      logger,
		MorningHour: cfg.MorningHour,
		Location:    location,
	})

	syncFn := worker.NewCalendarSync(db, notifyStore, creds, events, logger)

	assistant := bot.New(bot.BotConfig{
		Store:     bot.NewStore(db),
		Tasks:     taskStore,
		Creds:     creds,
		Events:    events,
		Sender:    sender,
		Logger:    logger,
		PublicURL: cfg.PublicURL,
		Location:  location,
	})

	// Background processing: the worker consumes tasks, the scheduler
	// produces them on the configured cron expressions.
	stopWorker, err := worker.Start(cfg, worker.Deps{
		DB:     db,
		Engine: engine,
		Sender: sender,
		Sync:   syncFn,
	})
	if err != nil {
		logger.Error("Failed to start worker", "error", err)
		os.Exit(1)
	}
	defer stopWorker()

	stopScheduler, err := worker.StartScheduler(cfg)
	if err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer stopScheduler()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sessions.Sessions("minder_session", cookie.NewStore([]byte(cfg.SessionSecret))))

	router.GET("/health", gin.WrapF(health.Handler))
	router.GET("/ready", gin.WrapH(health.ReadyHandler(db)))

	router.POST("/webhook/telegram", bot.WebhookHandler(assistant, cfg.TelegramWebhookSecret))
	router.POST("/api/trigger", notify.TriggerHandler(engine, db, sender, syncFn, logger))

	router.GET("/auth/google/login", auth.HandleLogin)
	router.GET("/auth/google/callback", auth.HandleCallback(db))
	router.GET("/auth/unlink", auth.HandleUnlink(db))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
