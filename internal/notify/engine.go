package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pmorrell/minder/internal/calendar"
	"github.com/pmorrell/minder/internal/compose"
	"github.com/pmorrell/minder/internal/credentials"
	"github.com/pmorrell/minder/internal/models"
	"github.com/pmorrell/minder/internal/timewindow"
)

// fanOutLimit caps how many users are processed concurrently. Each user
// costs a handful of Google API calls plus one Telegram send, so a small
// bound keeps a big user table from hammering either API.
const fanOutLimit = 4

// UserSource lists the users the engine should message.
type UserSource interface {
	ActiveUsers(ctx context.Context) ([]models.User, error)
}

// CredentialSource resolves a usable calendar access token for a user.
type CredentialSource interface {
	CalendarToken(ctx context.Context, userID uint) (string, error)
}

// TaskSource provides the task lists that go into composed messages.
type TaskSource interface {
	ListIncomplete(ctx context.Context, userID uint) ([]models.Task, error)
	ListDueToday(ctx context.Context, userID uint, now time.Time) ([]models.Task, error)
}

// Sender delivers a composed message to a Telegram chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Guard answers whether a notification slot is still unclaimed. Acquire
// returns false when another run already claimed the key.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Recorder appends an entry to the notification log.
type Recorder interface {
	Record(ctx context.Context, n *models.Notification) error
}

// UserResult is the outcome of processing a single user.
type UserResult struct {
	UserID      uint   `json:"user_id"`
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	EventsFound int    `json:"events_found"`
	Sent        bool   `json:"sent"`
	Skipped     bool   `json:"skipped,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Summary aggregates one engine run.
type Summary struct {
	Kind             Kind         `json:"kind"`
	UsersProcessed   int          `json:"users_processed"`
	MessagesSent     int          `json:"messages_sent"`
	TotalEventsFound int          `json:"total_events_found"`
	Results          []UserResult `json:"results"`
}

// Engine is the notification decision engine. One Run inspects the
// clock, gathers each active user's calendar and tasks, composes the
// appropriate message and delivers it.
type Engine struct {
	users    UserSource
	creds    CredentialSource
	events   calendar.Source
	tasks    TaskSource
	sender   Sender
	guard    Guard
	recorder Recorder
	logger   *slog.Logger

	morningHour int
	loc         *time.Location
}

// Config carries the engine's collaborators and tuning.
type Config struct {
	Users    UserSource
	Creds    CredentialSource
	Events   calendar.Source
	Tasks    TaskSource
	Sender   Sender
	Guard    Guard // nil disables repeat-send suppression
	Recorder Recorder
	Logger   *slog.Logger

	MorningHour int
	Location    *time.Location
}

func NewEngine(cfg Config) *Engine {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		users:       cfg.Users,
		creds:       cfg.Creds,
		events:      cfg.Events,
		tasks:       cfg.Tasks,
		sender:      cfg.Sender,
		guard:       cfg.Guard,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger,
		morningHour: cfg.MorningHour,
		loc:         loc,
	}
}

// Run processes every active user once. Per-user failures are isolated
// in the summary; the returned error covers only run-wide failures such
// as not being able to list users at all.
func (e *Engine) Run(ctx context.Context, now time.Time) (Summary, error) {
	kind := Classify(now, e.morningHour, e.loc)
	summary := Summary{Kind: kind}

	users, err := e.users.ActiveUsers(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list active users: %w", err)
	}
	summary.UsersProcessed = len(users)
	summary.Results = make([]UserResult, len(users))

	sem := make(chan struct{}, fanOutLimit)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			summary.Results[i] = e.processUser(ctx, &users[i], kind, now)
		}(i)
	}
	wg.Wait()

	for _, r := range summary.Results {
		if r.Sent {
			summary.MessagesSent++
		}
		summary.TotalEventsFound += r.EventsFound
	}

	e.logger.Info("notification run complete",
		"kind", kind,
		"users", summary.UsersProcessed,
		"sent", summary.MessagesSent,
		"events", summary.TotalEventsFound)
	return summary, nil
}

func (e *Engine) processUser(ctx context.Context, user *models.User, kind Kind, now time.Time) UserResult {
	result := UserResult{UserID: user.ID, Name: user.DisplayName(), Kind: kind}

	if skipped, err := e.claimSlot(ctx, user.ID, kind, now); err != nil {
		// A broken guard should not silence notifications. Log and send.
		e.logger.Warn("suppression guard unavailable, sending anyway",
			"user_id", user.ID, "error", err)
	} else if skipped {
		result.Skipped = true
		return result
	}

	token, err := e.creds.CalendarToken(ctx, user.ID)
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredential) {
			e.logger.Info("user has no linked calendar, skipping", "user_id", user.ID)
		} else {
			e.logger.Error("failed to resolve calendar token", "user_id", user.ID, "error", err)
		}
		result.Error = fmt.Sprintf("calendar credential: %v", err)
		return result
	}

	var message string
	switch kind {
	case KindMorningSummary:
		message, result.EventsFound, err = e.composeMorning(ctx, user, token, now)
	default:
		message, result.EventsFound, err = e.composeCurrentStatus(ctx, user, token, now)
	}
	if err != nil {
		e.logger.Error("failed to compose notification", "user_id", user.ID, "kind", kind, "error", err)
		result.Error = err.Error()
		return result
	}

	sendErr := e.sender.Send(ctx, user.TelegramID, message)
	if sendErr != nil {
		e.logger.Error("failed to deliver notification", "user_id", user.ID, "error", sendErr)
		result.Error = fmt.Sprintf("send: %v", sendErr)
	} else {
		result.Sent = true
	}

	notification := &models.Notification{
		UserID:      user.ID,
		SortKey:     models.NotificationSortKey(now, kind.NotificationType()),
		Type:        kind.NotificationType(),
		Message:     message,
		EventsCount: result.EventsFound,
		SentAt:      &now,
		Status:      models.NotificationStatusSent,
	}
	if sendErr != nil {
		notification.Status = models.NotificationStatusFailed
	}
	if err := e.recorder.Record(ctx, notification); err != nil {
		// The message already went out; a log write failure must not
		// flip the user's result.
		e.logger.Error("failed to record notification", "user_id", user.ID, "error", err)
	}
	return result
}

// claimSlot consults the guard so a user gets at most one message per
// period: one summary per local day, one status reminder per hour.
func (e *Engine) claimSlot(ctx context.Context, userID uint, kind Kind, now time.Time) (bool, error) {
	if e.guard == nil {
		return false, nil
	}
	var key string
	var ttl time.Duration
	if kind == KindMorningSummary {
		key = fmt.Sprintf("notify:%d:%s:%s", userID, kind, timewindow.DayKey(now.In(e.loc)))
		ttl = 24 * time.Hour
	} else {
		key = fmt.Sprintf("notify:%d:%s:%s", userID, kind, timewindow.HourKey(now))
		ttl = 2 * time.Hour
	}
	ok, err := e.guard.Acquire(ctx, key, ttl)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (e *Engine) composeMorning(ctx context.Context, user *models.User, token string, now time.Time) (string, int, error) {
	events, err := calendar.FetchMerged(ctx, e.events, token, timewindow.Day(now), e.logger)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch events: %w", err)
	}
	dueToday, err := e.tasks.ListDueToday(ctx, user.ID, now)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list tasks due today: %w", err)
	}
	open, err := e.tasks.ListIncomplete(ctx, user.ID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list open tasks: %w", err)
	}
	return compose.MorningSummary(events, dueToday, open, user.DisplayName()), len(events), nil
}

func (e *Engine) composeCurrentStatus(ctx context.Context, user *models.User, token string, now time.Time) (string, int, error) {
	events, err := calendar.FetchMerged(ctx, e.events, token, timewindow.CurrentStatus(now), e.logger)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch events: %w", err)
	}
	sel := calendar.Select(events, now)
	open, err := e.tasks.ListIncomplete(ctx, user.ID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list open tasks: %w", err)
	}
	found := 0
	if sel.Active != nil {
		found = 1
	}
	return compose.CurrentStatus(sel, open, user.DisplayName(), now), found, nil
}
