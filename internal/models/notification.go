package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Notification type constants
const (
	NotificationMorningSummary  = "morning_summary"
	NotificationCurrentReminder = "current_event_reminder"
	NotificationScheduled       = "scheduled_reminder"
)

// Notification status constants
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification is the write-once log of every send attempt. Proactive
// sends are recorded after the fact; scheduled reminders are created as
// pending rows and drained by the outbox task.
type Notification struct {
	gorm.Model
	UserID       uint   `gorm:"not null;index"`
	User         User   `gorm:"constraint:OnDelete:CASCADE;"`
	SortKey      string `gorm:"not null;index"` // notification_<unix>_<type>
	Type         string `gorm:"not null;index"`
	Message      string `gorm:"type:text;not null"`
	EventsCount  int    `gorm:"not null;default:0"`
	ScheduledFor *time.Time `gorm:"index"` // set only for scheduled reminders
	SentAt       *time.Time
	Status       string `gorm:"not null;default:'pending';index"`
}

// NotificationSortKey builds the composite sort key used by the log,
// matching the keyed-record layout of the store.
func NotificationSortKey(at time.Time, notificationType string) string {
	return fmt.Sprintf("notification_%d_%s", at.Unix(), notificationType)
}
