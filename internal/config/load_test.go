package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
alerter:
  bot_token: ${TEST_ALERT_TOKEN}
  chat_id: -1001234567890
  whitelist: [Timeout]
  blacklist:
    - ExitError
    - PathError
  api_url: http://localhost:8081
  timeout: 10s
logging:
  level: debug
  console: true
  telegram:
    enabled: true
    min_level: error
    rate_per_sec: 2
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("TEST_ALERT_TOKEN", "123:secret")

	cfg, err := Load(writeFile(t, "alertbot.yaml", sampleYAML))
	require.NoError(t, err)

	assert.EqualValues(t, -1001234567890, cfg.Alerter.ChatID)
	assert.Equal(t, "http://localhost:8081", cfg.Alerter.APIURL)

	ac := cfg.AlerterSettings()
	assert.Equal(t, "123:secret", ac.BotToken)
	assert.Equal(t, []string{"Timeout"}, ac.Whitelist)
	assert.Equal(t, []string{"ExitError", "PathError"}, ac.Blacklist)

	d, err := cfg.HTTPTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	lc := cfg.LogSettings()
	assert.Equal(t, "debug", lc.Level)
	assert.True(t, lc.Console)
	assert.True(t, lc.Telegram.Enabled)
	assert.Equal(t, "error", lc.Telegram.MinLevel)
	assert.Equal(t, 2, lc.Telegram.RatePerSec)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "alertbot.json", `{"alerter":{"bot_token":"T1","chat_id":42}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "T1", cfg.AlerterSettings().BotToken)
	assert.Empty(t, cfg.AlerterSettings().Whitelist)

	d, err := cfg.HTTPTimeout()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		wantErr string
	}{
		{"unknown key", "c.yaml", "alerter:\n  bot_token: T1\n  chat_id: 1\n  chat: 2\n", `unknown field "chat"`},
		{"trailing json", "c.json", `{"alerter":{"bot_token":"T1","chat_id":1}} {}`, "trailing data"},
		{"missing token", "c.yaml", "alerter:\n  chat_id: 1\n", `alerter.bot_token: failed "required"`},
		{"missing chat", "c.yaml", "alerter:\n  bot_token: T1\n", `alerter.chat_id: failed "required"`},
		{"bad api url", "c.yaml", "alerter:\n  bot_token: T1\n  chat_id: 1\n  api_url: not a url\n", `alerter.api_url: failed "url"`},
		{"bad level", "c.yaml", "alerter:\n  bot_token: T1\n  chat_id: 1\nlogging:\n  level: loud\n", `logging.level: failed "oneof"`},
		{"text limit too small", "c.yaml", "alerter:\n  bot_token: T1\n  chat_id: 1\n  max_text_len: 100\n", `alerter.max_text_len: failed "min"`},
		{"bad timeout", "c.yaml", "alerter:\n  bot_token: T1\n  chat_id: 1\n  timeout: soon\n", "alerter.timeout: invalid duration"},
		{"broken yaml", "c.yml", "alerter: [\n", "yaml unmarshal"},
		{"empty file", "c.yaml", "", `failed "required"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path, []byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDurationField(t *testing.T) {
	d, err := ParseDurationField("x", " 1m30s ")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = ParseDurationField("x", "-1s")
	assert.ErrorContains(t, err, "x: duration must be >= 0")
}

func TestExpandToken(t *testing.T) {
	t.Setenv("TEST_ALERT_TOKEN", "9:abc")
	assert.Equal(t, "9:abc", expandToken("$TEST_ALERT_TOKEN"))
	assert.Equal(t, "9:abc", expandToken(" ${TEST_ALERT_TOKEN} "))
	assert.Equal(t, "literal:$x", expandToken("literal:$x"))
	assert.Equal(t, "", expandToken("$TEST_ALERT_UNSET_VAR"))
}
