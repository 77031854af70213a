package alerter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ParseMode selects how Telegram interprets message text.
type ParseMode string

const (
	ModeNone     ParseMode = ""
	ModeMarkdown ParseMode = "MARKDOWN"
	ModeHTML     ParseMode = "HTML"
)

// ParseParseMode accepts "", "none", "markdown" or "html" in any case.
func ParseParseMode(s string) (ParseMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return ModeNone, nil
	case "MARKDOWN":
		return ModeMarkdown, nil
	case "HTML":
		return ModeHTML, nil
	default:
		return ModeNone, fmt.Errorf("unknown parse mode %q (want none, markdown or html)", s)
	}
}

// Message is the sendMessage request body.
type Message struct {
	ChatID                int64     `json:"chat_id"`
	Text                  string    `json:"text"`
	ParseMode             ParseMode `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool      `json:"disable_web_page_preview"`
	DisableNotification   bool      `json:"disable_notification"`
}

// MessageOption adjusts a Message built by NewMessage.
type MessageOption func(*Message)

// WithParseMode sets how Telegram formats the text.
func WithParseMode(m ParseMode) MessageOption {
	return func(msg *Message) { msg.ParseMode = m }
}

// WithLinkPreview lets Telegram render link previews (suppressed by default).
func WithLinkPreview() MessageOption {
	return func(msg *Message) { msg.DisableWebPagePreview = false }
}

// Silent delivers the message without a notification sound.
func Silent() MessageOption {
	return func(msg *Message) { msg.DisableNotification = true }
}

// NewMessage builds a plain-text message with link previews suppressed and
// notifications on, then applies opts.
func NewMessage(chatID int64, text string, opts ...MessageOption) Message {
	msg := Message{ChatID: chatID, Text: text, DisableWebPagePreview: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&msg)
		}
	}
	return msg
}

// Send posts msg to sendMessage and returns the raw response; the caller
// owns resp.Body. Errors from the HTTP client are returned as-is. Send never
// alerts on its own failures.
func (a *Alerter) Send(ctx context.Context, msg Message) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if msg.Text == "" {
		return nil, ErrEmptyText
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL()+"/sendMessage", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.client.Do(req)
}

// SendMessage sends text to chatID.
func (a *Alerter) SendMessage(ctx context.Context, chatID int64, text string, opts ...MessageOption) (*http.Response, error) {
	return a.Send(ctx, NewMessage(chatID, text, opts...))
}

// CustomAlert sends text to the configured default chat.
func (a *Alerter) CustomAlert(ctx context.Context, text string, opts ...MessageOption) (*http.Response, error) {
	return a.Send(ctx, NewMessage(a.chatID, text, opts...))
}
