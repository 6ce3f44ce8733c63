package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/pmorrell/minder/internal/config"
	"github.com/pmorrell/minder/internal/notify"
)

// Task type constants
const (
	TaskNotifyTick   = "notify:tick"
	TaskNotifyOutbox = "notify:outbox"
	TaskCalendarSync = "calendar:sync"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Deps carries everything the task handlers need.
type Deps struct {
	DB     *gorm.DB
	Engine *notify.Engine
	Sender notify.Sender
	Sync   notify.SyncFunc
}

// Run starts the Asynq worker server and blocks until shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, deps Deps) error {
	srv, mux, err := newServer(cfg, deps)
	if err != nil {
		return err
	}
	// Run blocks and handles its own signal interception.
	return srv.Run(mux)
}

// Start starts the Asynq worker in non-blocking mode and returns a stop function.
// Use this for embedded mode so the caller can coordinate shutdown.
func Start(cfg *config.Config, deps Deps) (stop func(), err error) {
	srv, mux, err := newServer(cfg, deps)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, deps Deps) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat)

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotifyTick, handleNotifyTick(logger, deps.Engine))
	mux.HandleFunc(TaskNotifyOutbox, handleNotifyOutbox(logger, deps.DB, deps.Sender))
	mux.HandleFunc(TaskCalendarSync, handleCalendarSync(logger, deps.Sync))

	logger.Info("Worker starting", "concurrency", 5, "redis", cfg.RedisURL)
	return srv, mux, nil
}

// handleNotifyTick runs the notification decision engine over every
// active user. The engine isolates per-user failures itself, so only a
// run that could not start at all is surfaced for retry.
func handleNotifyTick(logger *slog.Logger, engine *notify.Engine) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		now := time.Now().UTC()
		summary, err := engine.Run(ctx, now)
		if err != nil {
			return fmt.Errorf("notification run failed: %w", err)
		}
		logger.Info(
			"Processed notify:tick task",
			"kind", summary.Kind,
			"users", summary.UsersProcessed,
			"sent", summary.MessagesSent,
			"events", summary.TotalEventsFound,
		)
		return nil
	}
}

// handleNotifyOutbox drains due scheduled reminders. Rows that fail to
// send are marked failed individually, so the task itself only retries
// when the pending set could not be read.
func handleNotifyOutbox(logger *slog.Logger, db *gorm.DB, sender notify.Sender) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		summary, err := notify.DrainOutbox(ctx, db, sender, logger, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("outbox drain failed: %w", err)
		}
		if summary.Pending > 0 {
			logger.Info(
				"Processed notify:outbox task",
				"pending", summary.Pending,
				"sent", summary.Sent,
				"failed", summary.Failed,
			)
		}
		return nil
	}
}

func handleCalendarSync(logger *slog.Logger, sync notify.SyncFunc) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		if sync == nil {
			return fmt.Errorf("calendar sync not configured: %w", asynq.SkipRetry)
		}
		cached, err := sync(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("calendar sync failed: %w", err)
		}
		logger.Info("Processed calendar:sync task", "events_cached", cached)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		if retried >= maxRetry {
			logger.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}
