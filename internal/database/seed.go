package database

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pmorrell/minder/internal/models"
	"gorm.io/gorm"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	const devTelegramID = 111000111

	var existingUser models.User
	result := db.Where("telegram_id = ?", devTelegramID).First(&existingUser)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	now := time.Now().UTC()
	user := models.User{
		TelegramID: devTelegramID,
		FirstName:  "Dev",
		Username:   "devuser",
		Timezone:   "America/Chicago",
		Active:     true,
		LastSeenAt: &now,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	// Credential stub so the calendar path can be exercised without OAuth
	credential := models.CalendarCredential{
		UserID:       user.ID,
		Provider:     "google",
		AccessToken:  "dev-access-token-placeholder",
		RefreshToken: "dev-refresh-token-placeholder",
	}
	if err := db.Create(&credential).Error; err != nil {
		return err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	seedTasks := []models.Task{
		{TaskID: uuid.New().String(), UserID: user.ID, Name: "Review sprint board", Priority: 3, DueDate: &today, Status: models.TaskStatusIncomplete, AddedAt: now},
		{TaskID: uuid.New().String(), UserID: user.ID, Name: "Prepare client deck", Priority: 5, DueDate: &tomorrow, Status: models.TaskStatusIncomplete, AddedAt: now},
		{TaskID: uuid.New().String(), UserID: user.ID, Name: "Water the plants", Priority: models.PriorityUnset, Status: models.TaskStatusIncomplete, AddedAt: now},
	}
	for i := range seedTasks {
		if err := db.Create(&seedTasks[i]).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded dev data: 1 user, 1 calendar credential, 3 tasks")
	return nil
}
