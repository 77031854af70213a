// Package cli provides the Cobra-based alertbot commands: send a message,
// run a command under the alerter, and check the configuration.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// NewRootCmd builds the alertbot command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "alertbot",
		Short: "Telegram failure alerts for scripts and jobs",
		Long: `alertbot sends Telegram messages through a bot and reports failing commands.

Configuration comes from --config (YAML or JSON) or, without it, from the
ALERT_BOT_TOKEN, ALERT_CHAT_ID, ALERT_BOT_WHITELIST and ALERT_BOT_BLACKLIST
environment variables.`,
		Example: `  # Validate the token and print the bot identity
  alertbot check

  # Send a message to the default chat
  alertbot send "deploy finished"

  # Alert when a nightly job fails, keeping its exit code
  alertbot run -- ./backup.sh --full`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (YAML or JSON)")
	pf.StringVar(&opts.envFile, "env-file", "", "Load environment variables from this .env file first")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newSendCmd(opts),
		newRunCmd(opts),
		newCheckCmd(opts),
	)
	return root
}

// Execute runs alertbot with args, writing command output to stdout and
// errors to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
