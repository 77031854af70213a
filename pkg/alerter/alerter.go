package alerter

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

const (
	// DefaultBaseURL is the public Telegram Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultMaxTextLen is Telegram's sendMessage text limit (characters).
	DefaultMaxTextLen = 4096

	// MinMaxTextLen is the smallest limit that always fits the alert headline.
	MinMaxTextLen = 512
)

// Config is the dispatcher configuration. It is copied by New and never
// mutated afterwards.
type Config struct {
	BotToken  string   `json:"bot_token" validate:"required"`
	ChatID    int64    `json:"chat_id" validate:"required"`
	Whitelist []string `json:"whitelist,omitempty"`
	Blacklist []string `json:"blacklist,omitempty"`
}

// Alerter sends messages to a Telegram chat and wraps functions so their
// failures are reported there.
//
// It holds no mutable state after New and is safe for concurrent use as long
// as the configured http.Client is.
type Alerter struct {
	token   string
	chatID  int64
	policy  Policy
	client  *http.Client
	baseURL string
	maxText int
	log     logx.Logger
}

// Option customizes an Alerter.
type Option func(*Alerter)

// WithHTTPClient sets the client used for every request. Timeouts and proxies
// belong there. Defaults to http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Alerter) {
		if c != nil {
			a.client = c
		}
	}
}

// WithBaseURL points the Alerter at a different Bot API server.
func WithBaseURL(u string) Option {
	return func(a *Alerter) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			a.baseURL = u
		}
	}
}

// WithLogger sets the logger for delivery diagnostics. Defaults to logx.Nop().
func WithLogger(log logx.Logger) Option {
	return func(a *Alerter) { a.log = log }
}

// WithMaxTextLen caps the rendered alert text. Tracebacks are truncated to
// fit. Values below MinMaxTextLen are raised to it.
func WithMaxTextLen(n int) Option {
	return func(a *Alerter) {
		if n > 0 {
			a.maxText = max(n, MinMaxTextLen)
		}
	}
}

// New validates cfg and builds an Alerter. The whitelist and blacklist are
// copied, so later changes to cfg's slices have no effect.
func New(cfg Config, opts ...Option) (*Alerter, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	a := &Alerter{
		token:   strings.TrimSpace(cfg.BotToken),
		chatID:  cfg.ChatID,
		policy:  NewPolicy(cfg.Whitelist, cfg.Blacklist),
		client:  http.DefaultClient,
		baseURL: DefaultBaseURL,
		maxText: DefaultMaxTextLen,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.log.IsZero() {
		a.log = logx.Nop()
	}
	return a, nil
}

// Config returns a copy of the configuration the Alerter was built from.
func (a *Alerter) Config() Config {
	return Config{
		BotToken:  a.token,
		ChatID:    a.chatID,
		Whitelist: a.policy.Whitelist(),
		Blacklist: a.policy.Blacklist(),
	}
}

// ChatID is the default destination for CustomAlert and wrapped failures.
func (a *Alerter) ChatID() int64 { return a.chatID }

// Policy returns the kind filter applied to wrapped failures.
func (a *Alerter) Policy() Policy { return a.policy }

// BaseURL is the authenticated endpoint prefix, <api>/bot<token>.
func (a *Alerter) BaseURL() string { return a.baseURL + "/bot" + a.token }

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func validateConfig(cfg Config) error {
	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ConfigError{Var: fe.Field(), Reason: "is " + fe.Tag()}
	}
	return &ConfigError{Err: err}
}
