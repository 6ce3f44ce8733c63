package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Message sender constants
const (
	MessageSenderUser = "user"
	MessageSenderBot  = "bot"
)

// Message is one line of per-user conversation history kept for audit.
type Message struct {
	gorm.Model
	UserID  uint      `gorm:"not null;index"`
	User    User      `gorm:"constraint:OnDelete:CASCADE;"`
	SortKey string    `gorm:"not null;index"` // message_<unix>_<sender>
	Sender  string    `gorm:"not null"`
	Body    string    `gorm:"type:text;not null"`
	SentAt  time.Time `gorm:"not null"`
}

// MessageSortKey builds the composite sort key for a conversation line.
func MessageSortKey(at time.Time, sender string) string {
	return fmt.Sprintf("message_%d_%s", at.Unix(), sender)
}
