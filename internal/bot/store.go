package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pmorrell/minder/internal/models"
)

// Store is the gorm-backed persistence the webhook path needs: user
// resolution, the conversation log, and scheduled reminders.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ResolveUser finds or creates the account for an incoming Telegram
// message. First contact creates the row; every contact refreshes the
// profile fields and the last-seen stamp.
func (s *Store) ResolveUser(ctx context.Context, from *User, now time.Time) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", from.ID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			TelegramID: from.ID,
			FirstName:  from.FirstName,
			Username:   from.Username,
			Active:     true,
			LastSeenAt: &now,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	updates := map[string]interface{}{
		"first_name":   from.FirstName,
		"username":     from.Username,
		"active":       true,
		"last_seen_at": now,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to refresh user profile: %w", err)
	}
	user.FirstName = from.FirstName
	user.Username = from.Username
	user.Active = true
	user.LastSeenAt = &now
	return &user, nil
}

// LogMessage appends one side of the conversation to the log. Failures
// are reported but never block a reply, so callers just log the error.
func (s *Store) LogMessage(ctx context.Context, userID uint, sender, text string, at time.Time) error {
	msg := models.Message{
		UserID:  userID,
		SortKey: models.MessageSortKey(at, sender),
		Sender:  sender,
		Body:    text,
		SentAt:  at,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}
	return nil
}

// ScheduleReminder writes a pending notification the outbox drain will
// deliver once its time comes.
func (s *Store) ScheduleReminder(ctx context.Context, userID uint, at time.Time, text string) error {
	n := models.Notification{
		UserID:       userID,
		SortKey:      models.NotificationSortKey(at, models.NotificationScheduled),
		Type:         models.NotificationScheduled,
		Message:      fmt.Sprintf("⏰ *Reminder*\n%s", text),
		ScheduledFor: &at,
		Status:       models.NotificationStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return nil
}
