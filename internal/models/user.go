package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a Telegram user known to the bot.
// A row is created on first /start and never hard-deleted.
type User struct {
	gorm.Model
	TelegramID int64  `gorm:"uniqueIndex:idx_users_telegram_id_not_deleted,where:deleted_at IS NULL;not null"`
	FirstName  string `gorm:"not null;default:''"`
	Username   string `gorm:"not null;default:''"`
	Timezone   string `gorm:"not null;default:'UTC'"`
	Active     bool   `gorm:"not null;default:true;index"`
	LastSeenAt *time.Time

	// Associations
	Tasks         []Task         `gorm:"constraint:OnDelete:CASCADE;"`
	Notifications []Notification `gorm:"constraint:OnDelete:CASCADE;"`
}

// DisplayName returns the name used in composed messages.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "there"
}
