package cli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

// CommandError is a failed child command. Its kind is the kind of the
// underlying error (ExitError for a non-zero exit), so filters written for
// exec errors keep working.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string { return e.Command + ": " + e.Err.Error() }
func (e *CommandError) Unwrap() error { return e.Err }
func (e *CommandError) AlertKind() string {
	return alerter.KindOf(e.Err)
}

// ExitCode is the child's exit code, or 1 when it never ran.
func (e *CommandError) ExitCode() int {
	var ee *exec.ExitError
	if errors.As(e.Err, &ee) && ee.ExitCode() > 0 {
		return ee.ExitCode()
	}
	return 1
}

type runOptions struct {
	name string
}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command and alert if it fails",
		Long: `Run a command with inherited stdin/stdout/stderr. If it fails to start or
exits non-zero, an alert is sent (subject to the whitelist and blacklist) and
alertbot exits with the command's exit code.`,
		Example: `  alertbot run -- ./backup.sh --full
  alertbot run --name nightly-vacuum -- psql -c 'VACUUM ANALYZE'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup()
			if err != nil {
				return err
			}
			defer rt.close(context.WithoutCancel(cmd.Context()))

			cmdline := strings.Join(args, " ")
			id := alerter.Identity{Name: cmdline, Module: hostModule()}
			if opts.name != "" {
				id.Name = opts.name
			}
			log := rt.log.With(logx.String("cmd", cmdline))

			err = rt.alerter.DoAs(cmd.Context(), id, func(ctx context.Context) error {
				return runChild(ctx, cmd, args)
			})
			if err != nil {
				log.Warn("command failed", logx.Err(err))
				return err
			}
			log.Debug("command succeeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "Name reported in alerts instead of the command line")
	// Everything after the command name belongs to the child.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runChild(ctx context.Context, cmd *cobra.Command, args []string) error {
	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	if err := c.Run(); err != nil {
		return &CommandError{Command: strings.Join(args, " "), Err: err}
	}
	return nil
}

func hostModule() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "alertbot run"
	}
	return "alertbot run@" + h
}
