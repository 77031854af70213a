package config

import (
	"strings"

	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

// Summarize returns safe structured attrs describing an alerter config for
// logging. The token is never included, only whether it is set.
func Summarize(cfg alerter.Config) []logx.Field {
	return []logx.Field{
		logx.Bool("alerter.token_set", strings.TrimSpace(cfg.BotToken) != ""),
		logx.Int64("alerter.chat_id", cfg.ChatID),
		logx.Strings("alerter.whitelist", cfg.Whitelist),
		logx.Strings("alerter.blacklist", cfg.Blacklist),
	}
}

// MaskToken keeps the bot id part of a token ("123456:AA...") and hides the
// secret.
func MaskToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	id, secret, ok := strings.Cut(token, ":")
	if !ok || secret == "" {
		return "***"
	}
	return id + ":***"
}
