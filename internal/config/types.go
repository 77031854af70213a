package config

import (
	"os"
	"strings"
	"time"

	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

// Config is the alertbot config file.
//
// Example (YAML):
//
//	alerter:
//	  bot_token: ${ALERT_BOT_TOKEN}
//	  chat_id: -1001234567890
//	  blacklist: [ExitError, PathError]
//	  timeout: 10s
//	logging:
//	  level: info
//	  console: true
type Config struct {
	Alerter AlerterConfig `json:"alerter"`
	Logging LoggingConfig `json:"logging"`
}

// AlerterConfig mirrors alerter.Config plus transport settings.
//
// BotToken may reference an environment variable ("${NAME}" or "$NAME") so the
// secret does not have to live in the file.
type AlerterConfig struct {
	BotToken  string   `json:"bot_token" validate:"required"`
	ChatID    int64    `json:"chat_id" validate:"required"`
	Whitelist []string `json:"whitelist,omitempty"`
	Blacklist []string `json:"blacklist,omitempty"`

	// APIURL overrides https://api.telegram.org (self-hosted Bot API servers).
	APIURL string `json:"api_url,omitempty" validate:"omitempty,url"`
	// Timeout is a Go duration string applied to the HTTP client ("0s" or
	// empty keeps the client without a timeout).
	Timeout    string `json:"timeout,omitempty"`
	MaxTextLen int    `json:"max_text_len,omitempty" validate:"omitempty,min=512,max=4096"`
}

type LoggingConfig struct {
	Level    string          `json:"level" validate:"omitempty,oneof=trace debug info warn warning error TRACE DEBUG INFO WARN WARNING ERROR"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingTelegram forwards log lines at or above MinLevel to the alert chat.
type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec" validate:"omitempty,min=1"`
}

// AlerterSettings converts the file section into an alerter.Config, expanding
// an environment reference in the token.
func (c *Config) AlerterSettings() alerter.Config {
	return alerter.Config{
		BotToken:  expandToken(c.Alerter.BotToken),
		ChatID:    c.Alerter.ChatID,
		Whitelist: append([]string(nil), c.Alerter.Whitelist...),
		Blacklist: append([]string(nil), c.Alerter.Blacklist...),
	}
}

// HTTPTimeout parses alerter.timeout.
func (c *Config) HTTPTimeout() (time.Duration, error) {
	return ParseDurationField("alerter.timeout", c.Alerter.Timeout)
}

// LogSettings converts the logging section into a logx.Config.
func (c *Config) LogSettings() logx.Config {
	return LogSettings(c.Logging)
}

func LogSettings(l LoggingConfig) logx.Config {
	return logx.Config{
		Level:   l.Level,
		Console: l.Console,
		File: logx.FileConfig{
			Enabled: l.File.Enabled,
			Path:    l.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    l.Telegram.Enabled,
			MinLevel:   l.Telegram.MinLevel,
			RatePerSec: l.Telegram.RatePerSec,
		},
	}
}

func expandToken(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		return strings.TrimSpace(os.ExpandEnv(s))
	}
	return s
}
