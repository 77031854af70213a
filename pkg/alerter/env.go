package alerter

import (
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvBotToken  = "ALERT_BOT_TOKEN"
	EnvChatID    = "ALERT_CHAT_ID"
	EnvWhitelist = "ALERT_BOT_WHITELIST"
	EnvBlacklist = "ALERT_BOT_BLACKLIST"
)

const envPrefix = "ALERT_"

// ConfigFromEnv reads the dispatcher configuration from the process
// environment. The token and chat id are required; the lists are optional and
// separated by commas or whitespace.
func ConfigFromEnv() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, &ConfigError{Reason: "reading environment", Err: err}
	}

	token := strings.TrimSpace(k.String(envKey(EnvBotToken)))
	if token == "" {
		return Config{}, &ConfigError{Var: EnvBotToken, Reason: "must be set in environment variables"}
	}

	rawChat := strings.TrimSpace(k.String(envKey(EnvChatID)))
	if rawChat == "" {
		return Config{}, &ConfigError{Var: EnvChatID, Reason: "must be set in environment variables"}
	}
	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil {
		return Config{}, &ConfigError{Var: EnvChatID, Reason: "must be an integer", Err: err}
	}

	return Config{
		BotToken:  token,
		ChatID:    chatID,
		Whitelist: splitList(k.String(envKey(EnvWhitelist))),
		Blacklist: splitList(k.String(envKey(EnvBlacklist))),
	}, nil
}

// FromEnvironment builds an Alerter from ConfigFromEnv. The environment is
// read once, here.
func FromEnvironment(opts ...Option) (*Alerter, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// envKey maps ALERT_BOT_TOKEN to the koanf key "bot_token".
func envKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, envPrefix))
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
}
