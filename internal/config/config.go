package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the schedule manager.
type Config struct {
	DatabaseURL    string
	TickInterval   time.Duration
	DesktopNotify  bool
	TelegramToken  string
	TelegramChatID int64
	DailyAgendaAt  string // HH:MM local time, empty disables the digest
	LogLevel       string
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("SCHEDMAN_DB")),
		TickInterval:   parseTick(strings.TrimSpace(os.Getenv("SCHEDMAN_TICK_SECONDS"))),
		DesktopNotify:  parseBool(strings.TrimSpace(os.Getenv("SCHEDMAN_DESKTOP_NOTIFY")), true),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		TelegramChatID: parseChatID(strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))),
		DailyAgendaAt:  strings.TrimSpace(os.Getenv("SCHEDMAN_DAILY_AGENDA")),
		LogLevel:       strings.TrimSpace(os.Getenv("SCHEDMAN_LOG_LEVEL")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "schedule_manager.db"
	}

	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Minute
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

// TelegramEnabled reports whether the Telegram sink should be wired.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func parseTick(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseChatID(raw string) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
