package alerter

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestAlertHTML(t *testing.T) {
	al := Alert{
		ID:        "0b5e",
		Kind:      "ValueError",
		Message:   "a < b & c",
		Traceback: "main.run\n\t/app/main.go:12\n",
		Func:      Identity{Name: "run", Module: "example.com/app"},
	}
	want := "<b>ValueError('a &lt; b &amp; c')</b> in <u>run</u> from <u>example.com/app</u>\n" +
		"<i>incident 0b5e</i>\n\n<pre>main.run\n\t/app/main.go:12</pre>"
	assert.Equal(t, want, al.HTML(DefaultMaxTextLen))
}

func TestAlertHTMLPanicAndUnknownFunc(t *testing.T) {
	al := Alert{Kind: KindPanic, Message: "boom", Panic: true}
	assert.Equal(t, "<b>panic('boom')</b> in <u>unknown</u> from <u>unknown</u> (panic)", al.HTML(0))
}

func TestAlertHTMLTruncatesTraceback(t *testing.T) {
	al := Alert{
		ID:        "id",
		Kind:      "KeyError",
		Message:   "x",
		Traceback: strings.Repeat("frame & more\n", 2000),
		Func:      Identity{Name: "f", Module: "m"},
	}
	out := al.HTML(DefaultMaxTextLen)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), DefaultMaxTextLen)
	assert.True(t, strings.HasSuffix(out, "…</pre>"))
	assert.NotContains(t, out, "& ")
}

func TestEscTrunc(t *testing.T) {
	assert.Equal(t, "", escTrunc("abc", 0))
	assert.Equal(t, "a&amp;b", escTrunc("a&b", 10))
	// the entity does not fit in the remaining room, so it is dropped whole
	assert.Equal(t, "ab…", escTrunc("ab&cdef", 5))
	assert.Equal(t, "héllo…", escTrunc("héllo wörld", 6))
}

func TestNewAlertKinds(t *testing.T) {
	err := fmt.Errorf("load: %w", timeoutError{})
	al := newErrorAlert(err, Identity{Name: "f"}, "")
	assert.Equal(t, "Timeout", al.Kind)
	assert.Equal(t, []string{"wrapError", "Timeout"}, al.Kinds)
	assert.Equal(t, "load: deadline passed", al.Message)
	assert.NotEmpty(t, al.ID)
	assert.False(t, al.Panic)

	pa := newPanicAlert(42, Identity{}, "stack")
	assert.Equal(t, KindPanic, pa.Kind)
	assert.Equal(t, "42", pa.Message)
	assert.True(t, pa.Panic)

	pe := newPanicAlert(&KeyError{"id"}, Identity{}, "stack")
	assert.Equal(t, "KeyError", pe.Kind)
	assert.NotEqual(t, al.ID, pe.ID)
}
