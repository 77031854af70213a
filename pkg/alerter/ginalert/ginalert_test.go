package ginalert

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
)

func init() { gin.SetMode(gin.TestMode) }

func fakeAPI(t *testing.T) (*alerter.Alerter, func() []string) {
	t.Helper()
	var (
		mu    sync.Mutex
		texts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var body struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal(b, &body)
		mu.Lock()
		texts = append(texts, body.Text)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	a, err := alerter.New(alerter.Config{BotToken: "T1", ChatID: 42},
		alerter.WithBaseURL(srv.URL), alerter.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return a, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), texts...)
	}
}

func createOrder(c *gin.Context) { panic("nil cart") }

func listOrders(c *gin.Context) { c.String(http.StatusOK, "[]") }

func newRouter(a *alerter.Alerter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Recovery(a))
	r.POST("/orders", createOrder)
	r.GET("/orders", listOrders)
	return r
}

func TestRecoveryAlertsOnPanic(t *testing.T) {
	a, sent := fakeAPI(t)
	r := newRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	texts := sent()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "<b>panic('nil cart')</b> in <u>createOrder</u>")
	assert.Contains(t, texts[0], "pkg/alerter/ginalert</u> (panic)")
}

func TestRecoveryQuietOnSuccess(t *testing.T) {
	a, sent := fakeAPI(t)
	r := newRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sent())
}

func TestRecoveryWithoutAlerter(t *testing.T) {
	r := newRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
