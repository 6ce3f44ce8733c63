// Package tasks is the store adapter for user to-do items: listing,
// name resolution, and single-record mutations.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmorrell/minder/internal/models"
	"gorm.io/gorm"
)

// Lookup and validation errors surfaced to the requesting user.
var (
	ErrNotFound        = errors.New("task not found")
	ErrAmbiguous       = errors.New("more than one task matches that name")
	ErrInvalidPriority = errors.New("priority must be between 1 and 5")
)

// Store reads and mutates tasks for a single user partition.
type Store struct {
	db *gorm.DB
}

// NewStore creates a task store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListIncomplete returns the user's open tasks in display order.
func (s *Store) ListIncomplete(ctx context.Context, userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, models.TaskStatusComplete).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	SortForDisplay(tasks)
	return tasks, nil
}

// ListDueToday returns the user's open tasks due on the given day, in
// display order.
func (s *Store) ListDueToday(ctx context.Context, userID uint, now time.Time) ([]models.Task, error) {
	open, err := s.ListIncomplete(ctx, userID)
	if err != nil {
		return nil, err
	}

	due := open[:0:0]
	for _, t := range open {
		if t.DueToday(now) {
			due = append(due, t)
		}
	}
	return due, nil
}

// FindByName resolves a human-entered name to exactly one of the user's
// tasks, matching case-insensitively. Zero matches is ErrNotFound, two
// or more is ErrAmbiguous; an arbitrary pick is never made.
func (s *Store) FindByName(ctx context.Context, userID uint, name string) (*models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return resolveByName(tasks, name)
}

// Add creates a new task. Priority 0 means unset; otherwise it must be 1-5.
func (s *Store) Add(ctx context.Context, userID uint, name string, priority int, due *time.Time, now time.Time) (*models.Task, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("task name is required")
	}
	if priority != models.PriorityUnset && (priority < 1 || priority > 5) {
		return nil, ErrInvalidPriority
	}

	task := models.Task{
		TaskID:   uuid.New().String(),
		UserID:   userID,
		Name:     strings.TrimSpace(name),
		Priority: priority,
		DueDate:  due,
		Status:   models.TaskStatusIncomplete,
		AddedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

// Update persists edits to an existing task. Last writer wins; no
// optimistic concurrency.
func (s *Store) Update(ctx context.Context, task *models.Task) error {
	if task.Priority != models.PriorityUnset && (task.Priority < 1 || task.Priority > 5) {
		return ErrInvalidPriority
	}
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Complete marks a task done.
func (s *Store) Complete(ctx context.Context, task *models.Task) error {
	err := s.db.WithContext(ctx).
		Model(task).
		Update("status", models.TaskStatusComplete).Error
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return nil
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Delete(task).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// SortForDisplay orders tasks by priority descending (unset below 1),
// then due date ascending (empty last), then added date ascending. The
// sort is stable, so equal tasks keep their fetch order.
func SortForDisplay(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskLess(&tasks[i], &tasks[j])
	})
}

func taskLess(a, b *models.Task) bool {
	if pa, pb := effectivePriority(a), effectivePriority(b); pa != pb {
		return pa > pb
	}

	switch {
	case a.DueDate == nil && b.DueDate != nil:
		return false
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	}

	return a.AddedAt.Before(b.AddedAt)
}

// effectivePriority maps unset below the lowest explicit priority.
func effectivePriority(t *models.Task) int {
	if t.Priority == models.PriorityUnset {
		return -1
	}
	return t.Priority
}

func resolveByName(tasks []models.Task, name string) (*models.Task, error) {
	want := strings.ToLower(strings.TrimSpace(name))

	var found *models.Task
	for i := range tasks {
		if strings.ToLower(tasks[i].Name) != want {
			continue
		}
		if found != nil {
			return nil, ErrAmbiguous
		}
		found = &tasks[i]
	}

	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}
