package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pmorrell/minder/internal/calendar"
	"github.com/pmorrell/minder/internal/compose"
	"github.com/pmorrell/minder/internal/credentials"
	"github.com/pmorrell/minder/internal/models"
	"github.com/pmorrell/minder/internal/tasks"
	"github.com/pmorrell/minder/internal/timewindow"
)

// TaskStore is the slice of the task store the bot uses. *tasks.Store
// satisfies it; tests substitute fakes.
type TaskStore interface {
	ListIncomplete(ctx context.Context, userID uint) ([]models.Task, error)
	ListDueToday(ctx context.Context, userID uint, now time.Time) ([]models.Task, error)
	FindByName(ctx context.Context, userID uint, name string) (*models.Task, error)
	Add(ctx context.Context, userID uint, name string, priority int, due *time.Time, now time.Time) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Complete(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, task *models.Task) error
}

// UserStore is the conversation-side persistence the webhook path needs.
type UserStore interface {
	ResolveUser(ctx context.Context, from *User, now time.Time) (*models.User, error)
	LogMessage(ctx context.Context, userID uint, sender, text string, at time.Time) error
	ScheduleReminder(ctx context.Context, userID uint, at time.Time, text string) error
}

// CredentialSource resolves a calendar access token for a user.
type CredentialSource interface {
	CalendarToken(ctx context.Context, userID uint) (string, error)
}

// Sender delivers a reply to a Telegram chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Bot routes incoming Telegram messages to command handlers.
type Bot struct {
	registry *Registry
	store    UserStore
	tasks    TaskStore
	creds    CredentialSource
	events   calendar.Source
	sender   Sender
	logger   *slog.Logger

	publicURL string
	loc       *time.Location

	// now is swappable for tests.
	now func() time.Time
}

// BotConfig carries the bot's collaborators.
type BotConfig struct {
	Store     UserStore
	Tasks     TaskStore
	Creds     CredentialSource
	Events    calendar.Source
	Sender    Sender
	Logger    *slog.Logger
	PublicURL string
	Location  *time.Location
}

func New(cfg BotConfig) *Bot {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	b := &Bot{
		registry:  NewRegistry(),
		store:     cfg.Store,
		tasks:     cfg.Tasks,
		creds:     cfg.Creds,
		events:    cfg.Events,
		sender:    cfg.Sender,
		logger:    cfg.Logger,
		publicURL: cfg.PublicURL,
		loc:       loc,
		now:       func() time.Time { return time.Now().UTC() },
	}
	b.registerCommands()
	return b
}

func (b *Bot) registerCommands() {
	register := func(name, description string, handler HandlerFunc) {
		if err := b.registry.Register(&Command{Name: name, Description: description, Handler: handler}); err != nil {
			// Names are compile-time constants, so this only fires on a
			// programming mistake.
			panic(err)
		}
	}

	register("start", "Introduce the bot and link your calendar", b.handleStart)
	register("help", "List available commands", b.handleHelp)
	register("status", "What's happening right now", b.handleStatus)
	register("today", "Today's full schedule and tasks", b.handleToday)
	register("next", "Your next upcoming event", b.handleNext)
	register("tasks", "List your open tasks", b.handleTasks)
	register("add", "Add a task: /add buy milk p:2 due:2025-09-15", b.handleAdd)
	register("edit", "Change a task: /edit buy milk p:5", b.handleEdit)
	register("done", "Complete a task: /done buy milk", b.handleDone)
	register("delete", "Remove a task: /delete buy milk", b.handleDelete)
	register("remind", "One-off reminder: /remind in 45m stretch", b.handleRemind)
}

// HandleText routes one inbound message text to its command handler and
// returns the reply. Unknown commands and plain text get a hint.
func (b *Bot) HandleText(ctx context.Context, user *models.User, text string) string {
	name, args, isCommand := ParseCommand(text)
	if !isCommand {
		return "I understand slash commands like /status and /add. Try /help to see them all."
	}
	cmd, ok := b.registry.Get(name)
	if !ok {
		return fmt.Sprintf("I don't know /%s. Try /help to see what I can do.", name)
	}

	reply, err := cmd.Handler(ctx, user, args)
	if err != nil {
		b.logger.Error("command failed", "command", name, "user_id", user.ID, "error", err)
		return "Something went wrong on my end. Please try again in a moment."
	}
	return reply
}

func (b *Bot) handleStart(ctx context.Context, user *models.User, args string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👋 Hi %s! I'm Minder, your personal assistant.\n\n", user.DisplayName())
	sb.WriteString("I keep an eye on your calendar and tasks, and check in during the day.\n\n")
	fmt.Fprintf(&sb, "To connect your Google Calendar, open:\n%s/auth/google/login?telegram_id=%d\n\n", b.publicURL, user.TelegramID)
	sb.WriteString("Then try /status or /help.")
	return sb.String(), nil
}

func (b *Bot) handleHelp(ctx context.Context, user *models.User, args string) (string, error) {
	var sb strings.Builder
	sb.WriteString("🤖 *Commands*\n")
	for _, cmd := range b.registry.List() {
		fmt.Fprintf(&sb, "/%s — %s\n", cmd.Name, cmd.Description)
	}
	return sb.String(), nil
}

func (b *Bot) handleStatus(ctx context.Context, user *models.User, args string) (string, error) {
	now := b.now()
	token, reply, err := b.calendarToken(ctx, user)
	if reply != "" || err != nil {
		return reply, err
	}
	events, err := calendar.FetchMerged(ctx, b.events, token, timewindow.CurrentStatus(now), b.logger)
	if err != nil {
		return "", err
	}
	open, err := b.tasks.ListIncomplete(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return compose.CurrentStatus(calendar.Select(events, now), open, user.DisplayName(), now), nil
}

func (b *Bot) handleToday(ctx context.Context, user *models.User, args string) (string, error) {
	now := b.now()
	token, reply, err := b.calendarToken(ctx, user)
	if reply != "" || err != nil {
		return reply, err
	}
	events, err := calendar.FetchMerged(ctx, b.events, token, timewindow.Day(now), b.logger)
	if err != nil {
		return "", err
	}
	dueToday, err := b.tasks.ListDueToday(ctx, user.ID, now)
	if err != nil {
		return "", err
	}
	open, err := b.tasks.ListIncomplete(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return compose.MorningSummary(events, dueToday, open, user.DisplayName()), nil
}

func (b *Bot) handleNext(ctx context.Context, user *models.User, args string) (string, error) {
	now := b.now()
	token, reply, err := b.calendarToken(ctx, user)
	if reply != "" || err != nil {
		return reply, err
	}
	events, err := calendar.FetchMerged(ctx, b.events, token, timewindow.CurrentStatus(now), b.logger)
	if err != nil {
		return "", err
	}
	return compose.NextEvent(calendar.Select(events, now), now), nil
}

func (b *Bot) handleTasks(ctx context.Context, user *models.User, args string) (string, error) {
	open, err := b.tasks.ListIncomplete(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return compose.TaskList(open), nil
}

func (b *Bot) handleAdd(ctx context.Context, user *models.User, args string) (string, error) {
	parsed, err := parseTaskArgs(args)
	if err != nil {
		return err.Error(), nil
	}
	if parsed.name == "" {
		return "What should I add? Try: /add buy milk p:2 due:2025-09-15", nil
	}

	task, err := b.tasks.Add(ctx, user.ID, parsed.name, parsed.priority, parsed.due, b.now())
	if err != nil {
		if errors.Is(err, tasks.ErrInvalidPriority) {
			return "Priority must be between 1 and 5.", nil
		}
		return "", err
	}
	return fmt.Sprintf("Added ✅ %s", taskSummary(task)), nil
}

func (b *Bot) handleEdit(ctx context.Context, user *models.User, args string) (string, error) {
	parsed, err := parseTaskArgs(args)
	if err != nil {
		return err.Error(), nil
	}
	if parsed.name == "" {
		return "Which task? Try: /edit buy milk p:5", nil
	}
	if !parsed.hasPriority && !parsed.hasDue {
		return "Nothing to change. Add p:N or due:YYYY-MM-DD after the task name.", nil
	}

	task, err := b.tasks.FindByName(ctx, user.ID, parsed.name)
	if err != nil {
		return taskLookupReply(parsed.name, err)
	}
	if parsed.hasPriority {
		if parsed.priority != models.PriorityUnset && (parsed.priority < 1 || parsed.priority > 5) {
			return "Priority must be between 1 and 5.", nil
		}
		task.Priority = parsed.priority
	}
	if parsed.hasDue {
		task.DueDate = parsed.due
	}
	if err := b.tasks.Update(ctx, task); err != nil {
		return "", err
	}
	return fmt.Sprintf("Updated ✏️ %s", taskSummary(task)), nil
}

func (b *Bot) handleDone(ctx context.Context, user *models.User, args string) (string, error) {
	name := strings.TrimSpace(args)
	if name == "" {
		return "Which task is done? Try: /done buy milk", nil
	}
	task, err := b.tasks.FindByName(ctx, user.ID, name)
	if err != nil {
		return taskLookupReply(name, err)
	}
	if err := b.tasks.Complete(ctx, task); err != nil {
		return "", err
	}
	return fmt.Sprintf("Marked *%s* as done ✅", task.Name), nil
}

func (b *Bot) handleDelete(ctx context.Context, user *models.User, args string) (string, error) {
	name := strings.TrimSpace(args)
	if name == "" {
		return "Which task should I delete? Try: /delete buy milk", nil
	}
	task, err := b.tasks.FindByName(ctx, user.ID, name)
	if err != nil {
		return taskLookupReply(name, err)
	}
	if err := b.tasks.Delete(ctx, task); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted *%s* 🗑", task.Name), nil
}

func (b *Bot) handleRemind(ctx context.Context, user *models.User, args string) (string, error) {
	at, text, err := parseRemind(args, b.now(), b.loc)
	if err != nil {
		return err.Error(), nil
	}
	if err := b.store.ScheduleReminder(ctx, user.ID, at, text); err != nil {
		return "", err
	}
	return fmt.Sprintf("Okay, I'll remind you at %s: %s", at.In(b.loc).Format("03:04 PM"), text), nil
}

// calendarToken resolves a token, translating the missing-credential
// case into a friendly reply instead of an error.
func (b *Bot) calendarToken(ctx context.Context, user *models.User) (token, reply string, err error) {
	token, err = b.creds.CalendarToken(ctx, user.ID)
	if errors.Is(err, credentials.ErrNoCredential) {
		return "", fmt.Sprintf("Your calendar isn't linked yet. Open:\n%s/auth/google/login?telegram_id=%d", b.publicURL, user.TelegramID), nil
	}
	if err != nil {
		return "", "", err
	}
	return token, "", nil
}

func taskLookupReply(name string, err error) (string, error) {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		return fmt.Sprintf("I couldn't find a task named *%s*. Try /tasks to see the list.", name), nil
	case errors.Is(err, tasks.ErrAmbiguous):
		return fmt.Sprintf("You have more than one task named *%s*. Rename one so I know which you mean.", name), nil
	default:
		return "", err
	}
}

func taskSummary(t *models.Task) string {
	s := fmt.Sprintf("*%s*", t.Name)
	var extras []string
	if t.Priority != models.PriorityUnset {
		extras = append(extras, fmt.Sprintf("p%d", t.Priority))
	}
	if t.DueDate != nil {
		extras = append(extras, "due "+t.DueDate.UTC().Format("Jan 02"))
	}
	if len(extras) > 0 {
		s += " (" + strings.Join(extras, ", ") + ")"
	}
	return s
}
