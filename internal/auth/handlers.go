package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"

	"github.com/pmorrell/minder/internal/models"
)

const sessionTelegramID = "link_telegram_id"

// HandleLogin initiates the Google OAuth flow for calendar linking.
// The telegram_id query parameter identifies which bot user is linking;
// it is parked in the session until the callback.
func HandleLogin(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
	if err != nil || telegramID == 0 {
		c.String(http.StatusBadRequest, "Missing telegram_id. Open this link from the bot's /start message.")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTelegramID, telegramID)
	if err := session.Save(); err != nil {
		log.Printf("Session save error: %v", err)
		c.String(http.StatusInternalServerError, "Could not start the linking flow. Please try again.")
		return
	}

	// Gothic requires the "provider" query parameter
	q := c.Request.URL.Query()
	q.Add("provider", "google")
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleCallback completes the OAuth flow and stores the calendar
// tokens against the bot user parked in the session.
func HandleCallback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gothic requires the "provider" query parameter
		q := c.Request.URL.Query()
		q.Add("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			log.Printf("Auth error: %v", err)
			c.String(http.StatusBadRequest, "Google sign-in failed. Go back to Telegram and try /start again.")
			return
		}

		session := sessions.Default(c)
		telegramID, ok := session.Get(sessionTelegramID).(int64)
		if !ok || telegramID == 0 {
			c.String(http.StatusBadRequest, "This link expired. Go back to Telegram and try /start again.")
			return
		}

		var user models.User
		if err := db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			log.Printf("Link target lookup failed for telegram_id=%d: %v", telegramID, err)
			c.String(http.StatusBadRequest, "I don't know that Telegram account yet. Message the bot first, then retry the link.")
			return
		}

		if err := upsertCredential(db, user.ID, gothUser.AccessToken, gothUser.RefreshToken, gothUser.ExpiresAt); err != nil {
			log.Printf("Credential save error for user %d: %v", user.ID, err)
			c.String(http.StatusInternalServerError, "Could not store the calendar tokens. Please try again.")
			return
		}

		session.Delete(sessionTelegramID)
		if err := session.Save(); err != nil {
			log.Printf("Session clear error: %v", err)
		}

		log.Printf("Calendar linked: user_id=%d telegram_id=%d (%s)", user.ID, telegramID, gothUser.Email)
		c.String(http.StatusOK, "✅ Calendar linked! You can close this tab and go back to Telegram. Try /status.")
	}
}

// HandleUnlink removes the stored calendar credential for a bot user.
func HandleUnlink(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		telegramID, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
		if err != nil || telegramID == 0 {
			c.String(http.StatusBadRequest, "Missing telegram_id.")
			return
		}

		var user models.User
		if err := db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			c.String(http.StatusNotFound, "Unknown Telegram account.")
			return
		}

		result := db.Where("user_id = ?", user.ID).Delete(&models.CalendarCredential{})
		if result.Error != nil {
			log.Printf("Credential delete error for user %d: %v", user.ID, result.Error)
			c.String(http.StatusInternalServerError, "Could not unlink the calendar. Please try again.")
			return
		}

		log.Printf("Calendar unlinked: user_id=%d telegram_id=%d", user.ID, telegramID)
		c.String(http.StatusOK, "Calendar unlinked. Use /start in Telegram to link again.")
	}
}

func upsertCredential(db *gorm.DB, userID uint, accessToken, refreshToken string, expiresAt time.Time) error {
	var expiry *time.Time
	if !expiresAt.IsZero() {
		expiry = &expiresAt
	}

	var cred models.CalendarCredential
	err := db.Where("user_id = ?", userID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cred = models.CalendarCredential{
			UserID:       userID,
			Provider:     "google",
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenExpiry:  expiry,
		}
		return db.Create(&cred).Error
	}
	if err != nil {
		return err
	}

	cred.AccessToken = accessToken
	// Google only returns a refresh token on the first consent; keep the
	// stored one when the new grant omits it.
	if refreshToken != "" {
		cred.RefreshToken = refreshToken
	}
	cred.TokenExpiry = expiry
	return db.Save(&cred).Error
}
