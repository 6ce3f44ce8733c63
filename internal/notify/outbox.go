package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/pmorrell/minder/internal/models"
)

// OutboxSummary aggregates one drain of the scheduled-reminder outbox.
type OutboxSummary struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// DrainOutbox delivers every pending scheduled reminder whose time has
// come and marks each row sent or failed. Delivery is at least once: a
// row only leaves pending after a send attempt, so a crash between the
// send and the update means a retry on the next drain.
func DrainOutbox(ctx context.Context, db *gorm.DB, sender Sender, logger *slog.Logger, now time.Time) (OutboxSummary, error) {
	var summary OutboxSummary

	var due []models.Notification
	err := db.WithContext(ctx).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?",
			models.NotificationStatusPending, now).
		Order("scheduled_for asc").
		Find(&due).Error
	if err != nil {
		return summary, fmt.Errorf("failed to query pending reminders: %w", err)
	}
	summary.Pending = len(due)

	for i := range due {
		n := &due[i]

		var user models.User
		if err := db.WithContext(ctx).First(&user, n.UserID).Error; err != nil {
			logger.Error("failed to load reminder recipient",
				"notification_id", n.ID, "user_id", n.UserID, "error", err)
			markOutboxRow(ctx, db, logger, n, models.NotificationStatusFailed, now)
			summary.Failed++
			continue
		}

		if err := sender.Send(ctx, user.TelegramID, n.Message); err != nil {
			logger.Error("failed to deliver scheduled reminder",
				"notification_id", n.ID, "user_id", n.UserID, "error", err)
			markOutboxRow(ctx, db, logger, n, models.NotificationStatusFailed, now)
			summary.Failed++
			continue
		}

		markOutboxRow(ctx, db, logger, n, models.NotificationStatusSent, now)
		summary.Sent++
	}

	if summary.Pending > 0 {
		logger.Info("outbox drained",
			"pending", summary.Pending, "sent", summary.Sent, "failed", summary.Failed)
	}
	return summary, nil
}

func markOutboxRow(ctx context.Context, db *gorm.DB, logger *slog.Logger, n *models.Notification, status string, now time.Time) {
	updates := map[string]interface{}{"status": status, "sent_at": now}
	if err := db.WithContext(ctx).Model(n).Updates(updates).Error; err != nil {
		logger.Error("failed to update reminder status",
			"notification_id", n.ID, "status", status, "error", err)
	}
}
