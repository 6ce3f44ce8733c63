package models

import (
	"time"

	"github.com/pmorrell/minder/internal/crypto"
	"gorm.io/gorm"
)

var encryptor *crypto.TokenEncryptor

// InitEncryption initializes the token encryptor for the models package.
// Must be called before any database operations involving CalendarCredential.
func InitEncryption(encryptionKey string) error {
	var err error
	encryptor, err = crypto.NewTokenEncryptor(encryptionKey)
	return err
}

// CalendarCredential stores a user's Google Calendar OAuth tokens.
// Tokens are encrypted at rest via the BeforeSave/AfterFind hooks.
type CalendarCredential struct {
	gorm.Model
	UserID       uint   `gorm:"not null;uniqueIndex:idx_calendar_credentials_user,where:deleted_at IS NULL"`
	User         User   `gorm:"constraint:OnDelete:CASCADE;"`
	Provider     string `gorm:"not null;default:'google'"`
	AccessToken  string `gorm:"type:text"` // stored encrypted
	RefreshToken string `gorm:"type:text"` // stored encrypted
	TokenExpiry  *time.Time
}

// Expired reports whether the access token needs a refresh at the given time.
func (c *CalendarCredential) Expired(now time.Time) bool {
	return c.TokenExpiry != nil && !now.Before(*c.TokenExpiry)
}

// BeforeSave encrypts tokens before saving to database.
// Always encrypts non-empty tokens (GCM produces different output each time due to random nonce).
func (c *CalendarCredential) BeforeSave(tx *gorm.DB) error {
	if encryptor == nil {
		// Allow operations without encryption (e.g., for testing)
		return nil
	}

	if c.AccessToken != "" {
		encrypted, err := encryptor.Encrypt(c.AccessToken)
		if err != nil {
			return err
		}
		c.AccessToken = encrypted
	}

	if c.RefreshToken != "" {
		encrypted, err := encryptor.Encrypt(c.RefreshToken)
		if err != nil {
			return err
		}
		c.RefreshToken = encrypted
	}

	return nil
}

// AfterFind decrypts tokens after loading from database
func (c *CalendarCredential) AfterFind(tx *gorm.DB) error {
	if encryptor == nil {
		return nil
	}

	if c.AccessToken != "" {
		decrypted, err := encryptor.Decrypt(c.AccessToken)
		if err != nil {
			return err
		}
		c.AccessToken = decrypted
	}

	if c.RefreshToken != "" {
		decrypted, err := encryptor.Decrypt(c.RefreshToken)
		if err != nil {
			return err
		}
		c.RefreshToken = decrypted
	}

	return nil
}
