package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// telegramSink is a zerolog.LevelWriter that forwards lines at or above
// minLevel to send, rate limited and through a bounded queue so logging never
// blocks on the network.
type telegramSink struct {
	send     Sender
	minLevel zerolog.Level
	limiter  *rate.Limiter

	queue chan string
	// pending counts lines queued or being sent.
	pending atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func newTelegramSink(cfg TelegramConfig, send Sender) *telegramSink {
	rps := max(1, cfg.RatePerSec)
	ctx, cancel := context.WithCancel(context.Background())
	t := &telegramSink{
		send:     send,
		minLevel: parseLevel(cfg.MinLevel, zerolog.ErrorLevel),
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		queue:    make(chan string, 64),
		cancel:   cancel,
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(ctx)
	}()
	return t
}

func (t *telegramSink) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-t.queue:
			// A failed send is not logged: it would loop back into this sink.
			_ = t.send(ctx, msg)
			t.pending.Add(-1)
		}
	}
}

func (t *telegramSink) Write(p []byte) (int, error) {
	return t.WriteLevel(zerolog.InfoLevel, p)
}

func (t *telegramSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if t.send == nil || level < t.minLevel || !t.limiter.Allow() {
		return len(p), nil
	}
	msg := formatTelegramJSON(p)
	if msg == "" {
		return len(p), nil
	}
	t.pending.Add(1)
	select {
	case t.queue <- msg:
	default:
		t.pending.Add(-1)
	}
	return len(p), nil
}

// close waits for pending lines (bounded by ctx), then stops the worker.
func (t *telegramSink) close(ctx context.Context) {
	t.once.Do(func() {
		if ctx != nil {
			tick := time.NewTicker(10 * time.Millisecond)
			defer tick.Stop()
		wait:
			for t.pending.Load() > 0 {
				select {
				case <-ctx.Done():
					break wait
				case <-tick.C:
				}
			}
		}
		t.cancel()
		t.wg.Wait()
	})
}

// formatTelegramJSON turns a zerolog JSON line into a short plain-text
// message: "[LEVEL] message" followed by one "- key=value" line per field.
func formatTelegramJSON(p []byte) string {
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &m); err != nil {
		return truncate(strings.TrimSpace(string(p)), 3500)
	}

	var b strings.Builder
	if lvl, _ := m["level"].(string); lvl != "" {
		b.WriteString("[" + strings.ToUpper(lvl) + "] ")
	}
	msg, _ := m["message"].(string)
	b.WriteString(msg)

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "time", "level", "message":
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fmt.Sprint(m[k])
		if k == "stack" {
			b.WriteString("\n- stack=\n" + truncate(v, 900))
			continue
		}
		b.WriteString("\n- " + k + "=" + truncate(v, 600))
	}
	return truncate(b.String(), 3500)
}

func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	if maxN < 10 {
		return s[:maxN]
	}
	return s[:maxN-3] + "..."
}
