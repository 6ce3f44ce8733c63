package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pmorrell/minder/internal/calendar"
	"github.com/pmorrell/minder/internal/credentials"
	"github.com/pmorrell/minder/internal/models"
	"github.com/pmorrell/minder/internal/notify"
	"github.com/pmorrell/minder/internal/timewindow"
)

// syncHorizonDays is how far ahead the cache mirrors each calendar.
const syncHorizonDays = 7

// NewCalendarSync builds the periodic sync that mirrors the next week of
// every linked user's calendar into the cached_events table. Users
// without a linked calendar are skipped; a user whose fetch fails is
// logged and skipped so one bad account never stalls the rest.
func NewCalendarSync(db *gorm.DB, users notify.UserSource, creds notify.CredentialSource, events calendar.Source, logger *slog.Logger) notify.SyncFunc {
	return func(ctx context.Context, now time.Time) (int, error) {
		active, err := users.ActiveUsers(ctx)
		if err != nil {
			return 0, err
		}

		dayStart := timewindow.Day(now).From
		window := timewindow.Window{From: dayStart, To: dayStart.AddDate(0, 0, syncHorizonDays)}

		total := 0
		for i := range active {
			user := &active[i]

			token, err := creds.CalendarToken(ctx, user.ID)
			if err != nil {
				if !errors.Is(err, credentials.ErrNoCredential) {
					logger.Error("calendar sync: token resolution failed", "user_id", user.ID, "error", err)
				}
				continue
			}

			fetched, err := calendar.FetchMerged(ctx, events, token, window, logger)
			if err != nil {
				logger.Error("calendar sync: fetch failed", "user_id", user.ID, "error", err)
				continue
			}

			cached, err := upsertEvents(ctx, db, user.ID, fetched, now)
			if err != nil {
				logger.Error("calendar sync: cache write failed", "user_id", user.ID, "error", err)
				continue
			}
			total += cached
		}

		logger.Info("calendar sync complete", "users", len(active), "events_cached", total)
		return total, nil
	}
}

func upsertEvents(ctx context.Context, db *gorm.DB, userID uint, events []calendar.Event, now time.Time) (int, error) {
	count := 0
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		row := models.CachedEvent{
			UserID:     userID,
			EventID:    ev.ID,
			CalendarID: ev.CalendarID,
			Title:      ev.Title,
			Location:   ev.Location,
			StartTime:  ev.RawStart,
			EndTime:    ev.RawEnd,
			AllDay:     ev.AllDay,
			Status:     ev.Status,
			Raw:        datatypes.JSON(ev.Raw),
			SyncedAt:   now,
		}
		// The unique index is partial (live rows only), so the conflict
		// target needs the same predicate.
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}},
			DoUpdates: clause.AssignmentColumns([]string{
				"calendar_id", "title", "location", "start_time", "end_time",
				"all_day", "status", "raw", "synced_at", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
