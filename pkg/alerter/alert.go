package alerter

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

// Alert describes one intercepted failure. It only lives while it is being
// rendered and sent.
type Alert struct {
	ID        string
	Kind      string
	Kinds     []string
	Message   string
	Traceback string
	Func      Identity
	Panic     bool
}

func newErrorAlert(err error, fn Identity, trace string) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Kind:      primaryKind(err),
		Kinds:     Kinds(err),
		Message:   err.Error(),
		Traceback: trace,
		Func:      fn,
	}
}

func newPanicAlert(v any, fn Identity, stack string) Alert {
	al := Alert{
		ID:        uuid.NewString(),
		Kind:      KindPanic,
		Kinds:     []string{KindPanic},
		Message:   fmt.Sprint(v),
		Traceback: stack,
		Func:      fn,
		Panic:     true,
	}
	if err, ok := v.(error); ok {
		al.Kind = primaryKind(err)
		al.Kinds = Kinds(err)
	}
	return al
}

const preOpen, preClose = "<pre>", "</pre>"

// HTML renders the alert for ParseMode=HTML, keeping the result within limit
// characters. The message is capped at a quarter of the limit, names at an
// eighth, and the traceback gets whatever remains.
func (al Alert) HTML(limit int) string {
	if limit < MinMaxTextLen {
		limit = MinMaxTextLen
	}
	name := al.Func.Name
	if name == "" {
		name = "unknown"
	}
	module := al.Func.Module
	if module == "" {
		module = "unknown"
	}

	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(escTrunc(al.Kind, limit/8))
	b.WriteString("('")
	b.WriteString(escTrunc(al.Message, limit/4))
	b.WriteString("')</b> in <u>")
	b.WriteString(escTrunc(name, limit/8))
	b.WriteString("</u> from <u>")
	b.WriteString(escTrunc(module, limit/8))
	b.WriteString("</u>")
	if al.Panic {
		b.WriteString(" (panic)")
	}
	if al.ID != "" {
		b.WriteString("\n<i>incident ")
		b.WriteString(html.EscapeString(al.ID))
		b.WriteString("</i>")
	}

	head := b.String()
	budget := limit - utf8.RuneCountInString(head) - len("\n\n"+preOpen+preClose)
	tb := strings.TrimRight(al.Traceback, "\n")
	if tb == "" || budget <= 0 {
		return head
	}
	return head + "\n\n" + preOpen + escTrunc(tb, budget) + preClose
}

// escTrunc HTML-escapes s, cutting it so the escaped form (plus an ellipsis
// when cut) is at most n characters. Entities are never split.
func escTrunc(s string, n int) string {
	if n <= 0 {
		return ""
	}
	esc := html.EscapeString(s)
	if utf8.RuneCountInString(esc) <= n {
		return esc
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		e := html.EscapeString(string(r))
		w := utf8.RuneCountInString(e)
		if used+w > n-1 {
			break
		}
		b.WriteString(e)
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// errorTrace renders an error chain plus the stack of the goroutine that
// observed it, starting skip frames above the caller of errorTrace.
func errorTrace(err error, skip int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%+v\n", err)
	if kinds := Kinds(err); len(kinds) > 1 {
		b.WriteString("chain: ")
		b.WriteString(strings.Join(kinds, " <- "))
		b.WriteString("\n")
	}
	if st := callerStack(skip+3, 32); st != "" {
		b.WriteString("\n")
		b.WriteString(st)
	}
	return b.String()
}

func callerStack(skip, maxFrames int) string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	i := 0
	for {
		fr, more := frames.Next()
		if fr.File != "" {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(fr.Function)
			b.WriteString("\n\t")
			b.WriteString(fr.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(fr.Line))
			i++
		}
		if !more || i >= maxFrames {
			break
		}
	}
	return b.String()
}

// notify sends one alert to the default chat. Transport errors come back with
// the bot token scrubbed from the URL; non-2xx answers become *DeliveryError.
func (a *Alerter) notify(ctx context.Context, al Alert) error {
	log := a.log.With(
		logx.String("incident", al.ID),
		logx.String("kind", al.Kind),
		logx.String("func", al.Func.String()),
	)
	resp, err := a.CustomAlert(ctx, al.HTML(a.maxText), WithParseMode(ModeHTML))
	if err != nil {
		err = a.redact(err)
		log.Warn("alert delivery failed", logx.Err(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		derr := &DeliveryError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
		log.Warn("alert rejected", logx.Int("http", resp.StatusCode), logx.Err(derr))
		return derr
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	log.Debug("alert sent", logx.Int64("chat_id", a.chatID))
	return nil
}

// redact replaces the token in a *url.Error's URL so the error can be logged
// and returned without leaking the credential.
func (a *Alerter) redact(err error) error {
	ue, ok := err.(*url.Error)
	if !ok || a.token == "" {
		return err
	}
	return &url.Error{
		Op:  ue.Op,
		URL: strings.ReplaceAll(ue.URL, a.token, "<redacted>"),
		Err: ue.Err,
	}
}
