// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/keychain"
	"sfkit/cli/internal/logging"
	"sfkit/cli/internal/notify"
	"sfkit/cli/internal/terminal"
	"sfkit/cli/internal/warehouse"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	authKeyFile       string
	authAskPassphrase bool
)

// authCmd manages the secrets sfkit keeps in the OS keychain.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored credentials",
	Long: `Store, inspect and remove the secrets sfkit reads from the OS keychain: the
technical account private key and its passphrase, and the notification webhook
URL. Environment variables (` + envTechKey + `, ` + envTechPassphrase + `,
` + envWebhookURL + `) always take precedence over stored values.`,
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the technical account private key",
	Long: `Read a PEM, or base64-encoded DER, private key from --key-file or stdin,
check that it parses, and store it in the keychain. With --passphrase the
passphrase of an encrypted key is prompted for and stored too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if authKeyFile == "" || authKeyFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(authKeyFile)
		}
		if err != nil {
			return sferrors.Wrap(sferrors.InvalidArgument, "error reading private key", err)
		}
		key := strings.TrimSpace(string(data))

		var passphrase string
		if authAskPassphrase {
			if passphrase, err = terminal.ReadSecret("Key passphrase: "); err != nil {
				return sferrors.Wrap(sferrors.InvalidArgument, "error reading passphrase", err)
			}
		}
		if _, _, err := warehouse.ParsePrivateKey(key, passphrase); err != nil {
			return err
		}

		km, err := keychain.GetManager()
		if err != nil {
			return fmt.Errorf("secure storage is not available: %w", err)
		}
		if err := km.Save(keychain.KeyTechPrivateKey, key); err != nil {
			return fmt.Errorf("failed to store private key: %w", err)
		}
		if passphrase != "" {
			if err := km.Save(keychain.KeyTechPassphrase, passphrase); err != nil {
				return fmt.Errorf("failed to store passphrase: %w", err)
			}
		} else {
			_ = km.Delete(keychain.KeyTechPassphrase)
		}
		pterm.Success.Println("Private key stored in the OS keychain")
		return nil
	},
}

var authSetWebhookCmd = &cobra.Command{
	Use:   "set-webhook [URL]",
	Short: "Store the notification webhook URL",
	Long:  `Store the webhook URL used by "sfkit notify". Without an argument it is prompted for.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var url string
		if len(args) == 1 {
			url = args[0]
		} else {
			var err error
			if url, err = terminal.ReadSecret("Webhook URL: "); err != nil {
				return sferrors.Wrap(sferrors.InvalidArgument, "error reading webhook URL", err)
			}
		}
		url = strings.TrimSpace(url)
		if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
			return sferrors.New(sferrors.InvalidArgument, "webhook URL must start with https:// or http://")
		}

		km, err := keychain.GetManager()
		if err != nil {
			return fmt.Errorf("secure storage is not available: %w", err)
		}
		if err := km.Save(keychain.KeyWebhookURL, url); err != nil {
			return fmt.Errorf("failed to store webhook URL: %w", err)
		}
		pterm.Success.Println("Webhook URL stored in the OS keychain")
		return nil
	},
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored credentials and connection settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := map[string]bool{}
		if km, err := keychain.GetManager(); err == nil {
			for _, k := range keychain.Keys {
				status[k] = km.Has(k)
			}
		} else {
			pterm.Warning.Println("Secure storage is not available on this system")
		}

		secrets := notify.Dict{}
		for _, k := range keychain.Keys {
			v := "not set"
			if status[k] {
				v = "stored"
			}
			secrets = append(secrets, notify.Entry{Key: k, Value: v})
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Keychain")).
			WithPadding(1).
			Println(strings.TrimSpace(plainLines(secrets)))
		pterm.Println()

		wc := cfg.Warehouse
		settings := notify.Dict{
			{Key: "account", Value: orDash(wc.Account)},
			{Key: "user", Value: orDash(wc.User)},
			{Key: "tech_login", Value: orDash(wc.TechLogin)},
			{Key: "warehouse", Value: orDash(wc.Warehouse)},
			{Key: "role", Value: orDash(wc.Role)},
			{Key: "dsn", Value: orDash(logging.Mask(wc.DSN))},
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Connection")).
			WithPadding(1).
			Println(strings.TrimSpace(plainLines(settings)))
		pterm.Println()
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return fmt.Errorf("secure storage is not available: %w", err)
		}
		if err := km.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear keychain: %w", err)
		}
		fmt.Println("✅ All stored credentials have been removed")
		return nil
	},
}

// plainLines renders d as "key: value" lines for terminal boxes.
func plainLines(d notify.Dict) string {
	var b strings.Builder
	for _, e := range d {
		fmt.Fprintf(&b, "%-20s %v\n", e.Key+":", e.Value)
	}
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetKeyCmd, authSetWebhookCmd, authShowCmd, authClearCmd)
	authSetKeyCmd.Flags().StringVar(&authKeyFile, "key-file", "", "Private key file (default stdin)")
	authSetKeyCmd.Flags().BoolVar(&authAskPassphrase, "passphrase", false, "Prompt for the key passphrase")
}
