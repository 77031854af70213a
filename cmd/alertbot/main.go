package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mostafa-yasen/telegram-exception-alerts/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		cancel()
		os.Exit(coded.ExitCode())
	}
	fmt.Fprintln(os.Stderr, "fatal:", err)
	cancel()
	os.Exit(1)
}
