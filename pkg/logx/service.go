package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Service owns the log outputs: console, an append-only JSON file, and the
// optional Telegram sink.
type Service struct {
	root atomic.Pointer[zerolog.Logger]
	file *os.File
	tg   *telegramSink
}

// New builds the outputs described by cfg and returns the Service with its
// root Logger. sender may be nil, in which case the Telegram sink drops
// everything.
func New(cfg Config, sender Sender) (*Service, Logger) {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = consoleTimeFormat

	s := &Service{}
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, newConsoleWriter(Stderr()))
	}
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = "./alertbot.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(Stderr(), "logx: failed opening log file %q: %v\n", path, err)
		} else {
			s.file = f
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}
	if cfg.Telegram.Enabled {
		if sender == nil {
			fmt.Fprintln(Stderr(), "logx: telegram logging enabled but no sender configured")
		}
		s.tg = newTelegramSink(cfg.Telegram, sender)
		writers = append(writers, s.tg)
	}
	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(Stderr()))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.Level, zerolog.InfoLevel)).
		With().Timestamp().Logger()
	s.root.Store(&zl)
	return s, Logger{svc: s}
}

func (s *Service) current() zerolog.Logger {
	if zl := s.root.Load(); zl != nil {
		return *zl
	}
	return zerolog.Nop()
}

// Close waits, bounded by ctx, until every line handed to the Telegram sink
// has been sent, then stops the sink and closes the log file. Lines logged
// after Close starts are discarded.
func (s *Service) Close(ctx context.Context) error {
	nop := zerolog.Nop()
	s.root.Store(&nop)

	if s.tg != nil {
		s.tg.close(ctx)
	}
	if s.file != nil {
		f := s.file
		s.file = nil
		return f.Close()
	}
	return nil
}
