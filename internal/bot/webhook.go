package bot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmorrell/minder/internal/models"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives Telegram update payloads. Telegram retries on
// non-200 responses, so everything past payload validation answers 200
// and failures are logged instead of surfaced.
func WebhookHandler(b *Bot, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if webhookSecret != "" && c.GetHeader(secretHeader) != webhookSecret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "bad webhook secret"})
			return
		}

		var update Update
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
			return
		}

		// Edited messages, channel posts, joins and other non-message
		// updates are acknowledged and dropped.
		if update.Message == nil || update.Message.Text == "" || update.Message.From == nil || update.Message.From.IsBot {
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		ctx := c.Request.Context()
		now := b.now()
		msg := update.Message

		user, err := b.store.ResolveUser(ctx, msg.From, now)
		if err != nil {
			b.logger.Error("failed to resolve user", "telegram_id", msg.From.ID, "error", err)
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		if err := b.store.LogMessage(ctx, user.ID, models.MessageSenderUser, msg.Text, now); err != nil {
			b.logger.Error("failed to log inbound message", "user_id", user.ID, "error", err)
		}

		reply := b.HandleText(ctx, user, msg.Text)

		if err := b.sender.Send(ctx, msg.Chat.ID, reply); err != nil {
			b.logger.Error("failed to send reply", "user_id", user.ID, "error", err)
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
		if err := b.store.LogMessage(ctx, user.ID, models.MessageSenderBot, reply, b.now()); err != nil {
			b.logger.Error("failed to log reply", "user_id", user.ID, "error", err)
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
