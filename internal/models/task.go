package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status constants
const (
	TaskStatusIncomplete = "incomplete"
	TaskStatusComplete   = "complete"
)

// PriorityUnset marks a task without an explicit priority.
// Unset sorts below priority 1 everywhere.
const PriorityUnset = 0

// Task is a user-owned to-do item with optional priority (1-5) and due date.
type Task struct {
	gorm.Model
	TaskID   string `gorm:"uniqueIndex;not null"` // UUID, stable across edits
	UserID   uint   `gorm:"not null;index"`
	User     User   `gorm:"constraint:OnDelete:CASCADE;"`
	Name     string `gorm:"not null"`
	Priority int    `gorm:"not null;default:0"` // 0 = unset, else 1..5
	DueDate  *time.Time
	Status   string    `gorm:"not null;default:'incomplete';index"`
	AddedAt  time.Time `gorm:"not null"`
}

// DueToday reports whether the task's due date falls on the given day (UTC).
func (t *Task) DueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	y1, m1, d1 := t.DueDate.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
