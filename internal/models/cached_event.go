package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CachedEvent is a side-collaborator copy of a calendar event written by
// the periodic sync. The notification path always fetches live; this
// table exists for audit and offline inspection.
type CachedEvent struct {
	gorm.Model
	UserID     uint           `gorm:"not null;uniqueIndex:idx_cached_events_user_event,where:deleted_at IS NULL"`
	User       User           `gorm:"constraint:OnDelete:CASCADE;"`
	EventID    string         `gorm:"not null;uniqueIndex:idx_cached_events_user_event,where:deleted_at IS NULL"`
	CalendarID string         `gorm:"not null;default:''"`
	Title      string         `gorm:"not null;default:''"`
	Location   string         `gorm:"not null;default:''"`
	StartTime  string         `gorm:"not null;default:''"` // raw provider value, dateTime or date
	EndTime    string         `gorm:"not null;default:''"`
	AllDay     bool           `gorm:"not null;default:false"`
	Status     string         `gorm:"not null;default:'confirmed'"`
	Raw        datatypes.JSON `gorm:"type:jsonb"` // original provider payload, opaque
	SyncedAt   time.Time      `gorm:"not null"`
}
