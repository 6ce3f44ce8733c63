package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port        string
	Env         string
	PublicURL   string // base URL users follow for the calendar link flow
	DatabaseURL string
	RedisURL    string

	// Telegram
	TelegramBotToken      string
	TelegramWebhookSecret string
	StubTelegram          bool

	// Google Calendar OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	SessionSecret string
	EncryptionKey string

	// Notification policy
	MorningHour          int    // local hour at which the daily summary fires
	Timezone             string // IANA zone used for trigger classification
	NotifySchedule       string // cron expression for the proactive tick
	OutboxSchedule       string // cron expression for the scheduled-reminder drain
	CalendarSyncSchedule string
	SuppressRepeatSends  bool // skip re-sending the same kind within the same period

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Env:         getEnvWithDefault("ENV", "development"),
		PublicURL:   getEnvWithDefault("PUBLIC_URL", "http://localhost:8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),

		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		StubTelegram:          getEnvBool("TELEGRAM_STUB_MODE", false),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		EncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),

		MorningHour:          getEnvInt("MORNING_HOUR", 7),
		Timezone:             getEnvWithDefault("BOT_TIMEZONE", "UTC"),
		NotifySchedule:       getEnvWithDefault("NOTIFY_SCHEDULE", "0 * * * *"),
		OutboxSchedule:       getEnvWithDefault("OUTBOX_SCHEDULE", "* * * * *"),
		CalendarSyncSchedule: getEnvWithDefault("CALENDAR_SYNC_SCHEDULE", "30 * * * *"),
		SuppressRepeatSends:  getEnvBool("SUPPRESS_REPEAT_SENDS", true),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),
	}

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	return cfg
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}
