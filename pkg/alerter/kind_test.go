package alerter

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string     { return "deadline passed" }
func (timeoutError) AlertKind() string { return "Timeout" }

type store struct{}

func (*store) Flush() error { return nil }

func namedHandler(http.ResponseWriter, *http.Request) {}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"pointer type", &ValueError{"bad"}, "ValueError"},
		{"foreign package", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}, "PathError"},
		{"errors.New", errors.New("x"), "errorString"},
		{"kinder", timeoutError{}, "Timeout"},
		{"wrapper is its own kind", fmt.Errorf("ctx: %w", &KeyError{"id"}), "wrapError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindsWalksChain(t *testing.T) {
	assert.Nil(t, Kinds(nil))
	assert.Equal(t, []string{"ValueError"}, Kinds(&ValueError{"bad"}))
	assert.Equal(t,
		[]string{"wrapError", "KeyError"},
		Kinds(fmt.Errorf("load: %w", &KeyError{"id"})))
	assert.Equal(t,
		[]string{"joinError", "ValueError", "wrapError", "Timeout"},
		Kinds(errors.Join(&ValueError{"a"}, fmt.Errorf("b: %w", timeoutError{}))))
	// duplicates collapse
	assert.Equal(t,
		[]string{"wrapError", "KeyError"},
		Kinds(fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", &KeyError{"id"}))))
}

func TestPrimaryKindPrefersTaggedError(t *testing.T) {
	assert.Equal(t, "Timeout", primaryKind(fmt.Errorf("fetch: %w", timeoutError{})))
	assert.Equal(t, "wrapError", primaryKind(fmt.Errorf("fetch: %w", &KeyError{"id"})))
	assert.Equal(t, "KeyError", primaryKind(&KeyError{"id"}))
}

func TestSplitFuncName(t *testing.T) {
	tests := map[string]Identity{
		"example.com/x/pkg.(*T).Method-fm":   {Module: "example.com/x/pkg", Name: "(*T).Method"},
		"github.com/a/b.Run.func1":           {Module: "github.com/a/b", Name: "Run.func1"},
		"main.main":                          {Module: "main", Name: "main"},
		"nodots":                             {Name: "nodots"},
		"gopkg.in/telebot%2ev4.(*Bot).Start": {Module: "gopkg.in/telebot.v4", Name: "(*Bot).Start"},
		"go.yaml.in/yaml/v3.Unmarshal":       {Module: "go.yaml.in/yaml/v3", Name: "Unmarshal"},
	}
	for in, want := range tests {
		assert.Equal(t, want, splitFuncName(in), in)
	}
}

func TestIdentify(t *testing.T) {
	assert.Equal(t, Identity{}, Identify(nil))
	assert.Equal(t, Identity{}, Identify((func() error)(nil)))

	s := &store{}
	assert.Equal(t, Identity{Module: pkgPath, Name: "(*store).Flush"}, Identify(s.Flush))
	assert.Equal(t, Identity{Module: pkgPath, Name: "store"}, Identify(s))
	assert.Equal(t, Identity{Module: pkgPath, Name: "namedHandler"}, identifyHandler(http.HandlerFunc(namedHandler)))
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "sync", Identity{Name: "sync"}.String())
	assert.Equal(t, "example.com/jobs.sync", Identity{Name: "sync", Module: "example.com/jobs"}.String())
}
