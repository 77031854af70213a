package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
)

type sendOptions struct {
	chatID    int64
	parseMode string
	preview   bool
	silent    bool
}

func newSendCmd(g *globalOptions) *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send [text...]",
		Short: "Send a message to the alert chat",
		Long: `Send a message through the bot. Without arguments (or with "-") the text is
read from stdin. The raw Bot API response is printed.`,
		Example: `  alertbot send "backup finished"
  alertbot send --parse-mode html "<b>disk full</b> on db-1"
  df -h | alertbot send --silent -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := messageText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			mode, err := alerter.ParseParseMode(opts.parseMode)
			if err != nil {
				return err
			}

			rt, err := g.setup()
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			msgOpts := []alerter.MessageOption{alerter.WithParseMode(mode)}
			if opts.preview {
				msgOpts = append(msgOpts, alerter.WithLinkPreview())
			}
			if opts.silent {
				msgOpts = append(msgOpts, alerter.Silent())
			}
			chatID := rt.alerter.ChatID()
			if cmd.Flags().Changed("chat") {
				chatID = opts.chatID
			}

			resp, err := rt.alerter.SendMessage(cmd.Context(), chatID, text, msgOpts...)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Status)
			fmt.Fprintln(out, strings.TrimSpace(string(body)))
			if resp.StatusCode/100 != 2 {
				return fmt.Errorf("sendMessage: http %d", resp.StatusCode)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.chatID, "chat", 0, "Destination chat id (default: configured chat)")
	f.StringVar(&opts.parseMode, "parse-mode", "", "Text formatting: none, markdown or html")
	f.BoolVar(&opts.preview, "preview", false, "Allow link previews")
	f.BoolVar(&opts.silent, "silent", false, "Deliver without notification sound")
	return cmd
}

func messageText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		args = []string{string(b)}
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", alerter.ErrEmptyText
	}
	return text, nil
}
