package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SyncFunc refreshes the cached-event mirror; the worker package
// provides the implementation. It returns how many events were cached.
type SyncFunc func(ctx context.Context, now time.Time) (int, error)

type triggerRequest struct {
	TriggerType string `json:"trigger_type"`
}

// TriggerHandler exposes the background jobs for manual and external
// invocation: {"trigger_type": "notify" | "outbox" | "calendar_sync"}.
// Unknown or missing types are a 400; a run that cannot start at all is
// a 500. Per-user failures inside a notify run still answer 200 with
// the summary.
func TriggerHandler(engine *Engine, db *gorm.DB, sender Sender, sync SyncFunc, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req triggerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trigger payload"})
			return
		}

		ctx := c.Request.Context()
		now := time.Now().UTC()

		switch req.TriggerType {
		case "notify":
			summary, err := engine.Run(ctx, now)
			if err != nil {
				logger.Error("triggered notification run failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, summary)

		case "outbox":
			summary, err := DrainOutbox(ctx, db, sender, logger, now)
			if err != nil {
				logger.Error("triggered outbox drain failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, summary)

		case "calendar_sync":
			if sync == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "calendar sync is not enabled"})
				return
			}
			cached, err := sync(ctx, now)
			if err != nil {
				logger.Error("triggered calendar sync failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"events_cached": cached})

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown trigger_type"})
		}
	}
}
