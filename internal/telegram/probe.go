// Package telegram talks to the Bot API through telebot for the operations
// that do not need the raw sendMessage contract of pkg/alerter.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// BotInfo is the identity of the bot behind a token.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

type ProbeOptions struct {
	// APIURL overrides https://api.telegram.org.
	APIURL string
	Client *http.Client
}

// Probe checks that token belongs to a live bot (getMe) and returns its
// identity. telebot has no context support, so ctx only bounds how long Probe
// waits; the request itself is limited by the client's timeout.
func Probe(ctx context.Context, token string, opt ProbeOptions) (BotInfo, error) {
	if strings.TrimSpace(token) == "" {
		return BotInfo{}, errors.New("telegram token is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	type result struct {
		me  *tele.User
		err error
	}
	done := make(chan result, 1)
	go func() {
		// NewBot calls getMe unless Offline is set.
		b, err := tele.NewBot(tele.Settings{
			Token:  strings.TrimSpace(token),
			URL:    strings.TrimRight(opt.APIURL, "/"),
			Client: opt.Client,
		})
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{me: b.Me}
	}()

	select {
	case <-ctx.Done():
		return BotInfo{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return BotInfo{}, r.err
		}
		if r.me == nil {
			return BotInfo{}, errors.New("telegram getMe returned no bot")
		}
		return BotInfo{ID: r.me.ID, Username: r.me.Username, FirstName: r.me.FirstName}, nil
	}
}
