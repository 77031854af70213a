package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mostafa-yasen/telegram-exception-alerts/internal/config"
	"github.com/mostafa-yasen/telegram-exception-alerts/internal/telegram"
	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
	logx "github.com/mostafa-yasen/telegram-exception-alerts/pkg/logx"
)

type checkOptions struct {
	offline  bool
	sendTest bool
	timeout  time.Duration
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and the bot token",
		Long: `Load the configuration, print it without secrets, and ask Telegram who the
bot is (getMe). With --send-test a short message goes to the alert chat.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup()
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "token:     %s\n", config.MaskToken(rt.cfg.BotToken))
			fmt.Fprintf(out, "chat_id:   %d\n", rt.cfg.ChatID)
			fmt.Fprintf(out, "whitelist: %s\n", listOrDash(rt.alerter.Policy().Whitelist()))
			fmt.Fprintf(out, "blacklist: %s\n", listOrDash(rt.alerter.Policy().Blacklist()))

			if opts.offline {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			info, err := telegram.Probe(ctx, rt.cfg.BotToken, telegram.ProbeOptions{APIURL: rt.apiURL, Client: rt.client})
			if err != nil {
				return fmt.Errorf("getMe: %w", err)
			}
			fmt.Fprintf(out, "bot:       @%s (id %d)\n", info.Username, info.ID)
			rt.log.Debug("bot token verified", logx.Int64("bot_id", info.ID), logx.String("bot", info.Username))

			if !opts.sendTest {
				return nil
			}
			resp, err := rt.alerter.CustomAlert(ctx,
				"<b>alertbot</b> test message from <code>@"+info.Username+"</code>",
				alerter.WithParseMode(alerter.ModeHTML), alerter.Silent())
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode/100 != 2 {
				return fmt.Errorf("test message rejected: %s", resp.Status)
			}
			fmt.Fprintln(out, "test:      sent")
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.offline, "offline", false, "Only validate configuration, do not contact Telegram")
	f.BoolVar(&opts.sendTest, "send-test", false, "Send a test message to the alert chat")
	f.DurationVar(&opts.timeout, "timeout", 15*time.Second, "Time limit for the Telegram calls")
	return cmd
}

func listOrDash(xs []string) string {
	if len(xs) == 0 {
		return "-"
	}
	return strings.Join(xs, ", ")
}
