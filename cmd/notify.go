// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/httperrors"
	"sfkit/cli/internal/keychain"
	"sfkit/cli/internal/notify"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var notifyWebhook string

// notifyCmd groups the webhook senders.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Post messages to a chat webhook",
	Long: `Post a message to an incoming-webhook URL (Slack, Mattermost, Discord and
similar). The URL is taken from --webhook, then SFKIT_WEBHOOK_URL, then the
keychain entry written by "sfkit auth set-webhook".`,
}

var notifyTextCmd = &cobra.Command{
	Use:   "text MESSAGE",
	Short: "Send a plain text message",
	Long: `Send {"text":"MESSAGE"}. The body is built without escaping and without a
Content-Type header; quotes, backslashes and newlines in MESSAGE produce a body
most webhooks reject. Use "notify dict" for structured content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendNotification(cmd.Context(), func(ctx context.Context, c *notify.Client, url string) error {
			return c.SendText(ctx, url, args[0])
		})
	},
}

var notifyDictCmd = &cobra.Command{
	Use:   "dict FILE.yaml",
	Short: "Send a YAML mapping rendered as a formatted message",
	Long: `Render a YAML mapping as bold keys followed by their values and send it as
JSON. One level of nested mappings is rendered as italic sub-keys. Pass - to
read the mapping from stdin.

Example:
  printf 'status: ok\nrows:\n  raw: 10\n  joined: 1\n' | sfkit notify dict -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return sferrors.Wrap(sferrors.InvalidArgument, "error reading "+args[0], err)
		}
		d, err := notify.DictFromYAML(data)
		if err != nil {
			return sferrors.Wrap(sferrors.InvalidArgument, "invalid message mapping", err)
		}
		return sendNotification(cmd.Context(), func(ctx context.Context, c *notify.Client, url string) error {
			return c.SendDict(ctx, url, d)
		})
	},
}

// sendNotification resolves the webhook and runs send, describing network
// failures on the terminal.
func sendNotification(ctx context.Context, send func(context.Context, *notify.Client, string) error) error {
	url := strings.TrimSpace(notifyWebhook)
	if url == "" {
		url = loadSecret(envWebhookURL, keychain.KeyWebhookURL)
	}
	if url == "" {
		return sferrors.New(sferrors.InvalidArgument,
			"no webhook configured: pass --webhook, set "+envWebhookURL+" or run `sfkit auth set-webhook`")
	}

	opts := []notify.Option{notify.WithLogger(logger)}
	if s := cfg.Notify.TimeoutSeconds; s > 0 {
		opts = append(opts, notify.WithTimeout(time.Duration(s)*time.Second))
	}
	client := notify.New(opts...)

	if err := send(ctx, client, url); err != nil {
		if sferrors.IsKind(err, sferrors.NotifyFailed) {
			logger.Debug("webhook delivery failed", zap.Error(httperrors.FormatNetworkError(err, url, "sending the notification")))
		}
		return err
	}
	pterm.Success.Println("Notification sent")
	return nil
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTextCmd, notifyDictCmd)
	notifyCmd.PersistentFlags().StringVar(&notifyWebhook, "webhook", "", "Webhook URL (default from "+envWebhookURL+" or the keychain)")
}
