package notify

import (
	"time"

	"github.com/pmorrell/minder/internal/models"
)

// Kind is the message type chosen for one invocation of the engine.
type Kind string

const (
	KindMorningSummary Kind = "morning_summary"
	KindCurrentStatus  Kind = "current_status"
)

// NotificationType maps the kind to the type recorded in the log.
func (k Kind) NotificationType() string {
	if k == KindMorningSummary {
		return models.NotificationMorningSummary
	}
	return models.NotificationCurrentReminder
}

// Classify decides the message type for an invocation: the morning
// summary fires when the local hour equals the configured morning hour,
// every other invocation is a current-status reminder.
func Classify(now time.Time, morningHour int, loc *time.Location) Kind {
	if loc == nil {
		loc = time.UTC
	}
	if now.In(loc).Hour() == morningHour {
		return KindMorningSummary
	}
	return KindCurrentStatus
}
