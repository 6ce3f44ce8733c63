package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pmorrell/minder/internal/config"
)

// StartScheduler creates and starts an Asynq Scheduler for the periodic
// tasks: the notification tick, the reminder outbox drain, and the
// calendar cache sync. Returns a stop function for graceful shutdown.
func StartScheduler(cfg *config.Config) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		location = time.UTC
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat)

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: location,
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	entries := []struct {
		schedule string
		task     *asynq.Task
	}{
		{
			schedule: cfg.NotifySchedule,
			task: asynq.NewTask(
				TaskNotifyTick,
				nil, // empty payload, handler queries all users
				// The schedule re-fires the tick; retrying a failed one
				// would race the next slot.
				asynq.MaxRetry(0),
				asynq.Timeout(10*time.Minute),
				asynq.Retention(24*time.Hour),
				asynq.Unique(30*time.Minute), // prevent duplicate if scheduler runs twice
			),
		},
		{
			schedule: cfg.OutboxSchedule,
			task: asynq.NewTask(
				TaskNotifyOutbox,
				nil,
				asynq.MaxRetry(0),
				asynq.Timeout(5*time.Minute),
				asynq.Retention(6*time.Hour),
				asynq.Unique(time.Minute),
			),
		},
		{
			schedule: cfg.CalendarSyncSchedule,
			task: asynq.NewTask(
				TaskCalendarSync,
				nil,
				asynq.MaxRetry(2),
				asynq.Timeout(10*time.Minute),
				asynq.Retention(24*time.Hour),
				asynq.Unique(30*time.Minute),
			),
		},
	}

	for _, e := range entries {
		entryID, err := scheduler.Register(e.schedule, e.task)
		if err != nil {
			return nil, fmt.Errorf("failed to register %s schedule: %w", e.task.Type(), err)
		}
		logger.Info("Registered periodic task",
			"task_type", e.task.Type(),
			"schedule", e.schedule,
			"entry_id", entryID,
		)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	slog.Info("Scheduler started", "timezone", cfg.Timezone)

	return func() { scheduler.Shutdown() }, nil
}
