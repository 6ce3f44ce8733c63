package notify

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pmorrell/minder/internal/models"
)

// Store is the gorm-backed implementation of UserSource and Recorder.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ActiveUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("active = ? AND telegram_id <> 0", true).
		Order("id asc").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	return users, nil
}

func (s *Store) Record(ctx context.Context, n *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}
