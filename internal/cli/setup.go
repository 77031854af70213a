package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"

	"github.com/mostafa-yasen/telegram-exception-alerts/internal/config"
	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

// session is what every command needs: a ready Alerter plus the logging
// service that may forward to it.
type session struct {
	cfg     alerter.Config
	apiURL  string
	client  *http.Client
	alerter *alerter.Alerter
	log     logx.Logger
	logSvc  *logx.Service
}

func (o *globalOptions) setup() (*session, error) {
	if o.envFile != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", o.envFile, err)
		}
	}

	rt := &session{client: &http.Client{}}
	logCfg := logx.Config{Level: "info", Console: true}
	var opts []alerter.Option

	if o.configPath != "" {
		fc, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		timeout, err := fc.HTTPTimeout()
		if err != nil {
			return nil, err
		}
		rt.client.Timeout = timeout
		rt.cfg = fc.AlerterSettings()
		rt.apiURL = fc.Alerter.APIURL
		logCfg = fc.LogSettings()
		if fc.Alerter.APIURL != "" {
			opts = append(opts, alerter.WithBaseURL(fc.Alerter.APIURL))
		}
		if fc.Alerter.MaxTextLen > 0 {
			opts = append(opts, alerter.WithMaxTextLen(fc.Alerter.MaxTextLen))
		}
	} else {
		cfg, err := alerter.ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		rt.cfg = cfg
	}
	if lvl := strings.TrimSpace(o.logLevel); lvl != "" {
		logCfg.Level = lvl
	}

	// The Telegram log sink needs the alerter, which needs the logger.
	var target atomic.Pointer[alerter.Alerter]
	rt.logSvc, rt.log = logx.New(logCfg, func(ctx context.Context, text string) error {
		a := target.Load()
		if a == nil {
			return nil
		}
		resp, err := a.CustomAlert(ctx, text, alerter.Silent())
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})

	opts = append(opts,
		alerter.WithHTTPClient(rt.client),
		alerter.WithLogger(rt.log.With(logx.String("comp", "alerter"))),
	)
	a, err := alerter.New(rt.cfg, opts...)
	if err != nil {
		_ = rt.logSvc.Close(context.Background())
		return nil, err
	}
	target.Store(a)
	rt.alerter = a

	fields := append(config.Summarize(rt.cfg), logx.Duration("http_timeout", rt.client.Timeout))
	rt.log.Debug("configuration loaded", fields...)
	return rt, nil
}

func (rt *session) close(ctx context.Context) {
	if rt == nil || rt.logSvc == nil {
		return
	}
	_ = rt.logSvc.Close(ctx)
}
