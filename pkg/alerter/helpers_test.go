package alerter

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// ValueError and KeyError stand in for the failure kinds users filter on.
type ValueError struct{ msg string }

func (e *ValueError) Error() string { return e.msg }

type KeyError struct{ key string }

func (e *KeyError) Error() string { return "missing key " + e.key }

type capturedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        map[string]any
}

// botAPI is a fake Bot API that records every request.
type botAPI struct {
	srv    *httptest.Server
	status int

	mu   sync.Mutex
	reqs []capturedRequest
}

func newBotAPI(t *testing.T, status int) *botAPI {
	t.Helper()
	api := &botAPI{status: status}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(b, &body)
		api.mu.Lock()
		api.reqs = append(api.reqs, capturedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		if api.status/100 == 2 {
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	t.Cleanup(api.srv.Close)
	return api
}

func (api *botAPI) requests() []capturedRequest {
	api.mu.Lock()
	defer api.mu.Unlock()
	return append([]capturedRequest(nil), api.reqs...)
}

func (api *botAPI) alerter(t *testing.T, cfg Config, opts ...Option) *Alerter {
	t.Helper()
	opts = append([]Option{WithBaseURL(api.srv.URL), WithHTTPClient(api.srv.Client())}, opts...)
	a, err := New(cfg, opts...)
	require.NoError(t, err)
	return a
}

func raisesValueError() error { return &ValueError{msg: "bad"} }
