// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/keychain"
	"sfkit/cli/internal/logging"
	"sfkit/cli/internal/terminal"
	"sfkit/cli/internal/warehouse"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Environment variables holding secrets. They take precedence over the keychain.
const (
	envTechKey        = "SFKIT_TECH_KEY"
	envTechPassphrase = "SFKIT_TECH_KEY_PASSPHRASE"
	envWebhookURL     = "SFKIT_WEBHOOK_URL"
	envPassword       = "SFKIT_PASSWORD"
)

// connFlags are shared by every command that opens a warehouse session.
type connFlags struct {
	dsn           string
	account       string
	user          string
	authenticator string
	techLogin     string
	warehouse     string
	role          string
	yes           bool
}

func (f *connFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.dsn, "dsn", "", "Connect with a DSN (postgres://, snowflake://, sqlite:// or file:)")
	fs.StringVar(&f.account, "account", "", "Snowflake account identifier (default from config, then \"prod\")")
	fs.StringVar(&f.user, "user", "", "Snowflake user for interactive login")
	fs.StringVar(&f.authenticator, "authenticator", "", "Authenticator: externalbrowser, snowflake, oauth, username_password_mfa or an Okta URL")
	fs.StringVar(&f.techLogin, "tech-login", "", "Technical account login; the private key comes from SFKIT_TECH_KEY or the keychain")
	fs.StringVar(&f.warehouse, "warehouse", "", "Snowflake virtual warehouse")
	fs.StringVar(&f.role, "role", "", "Snowflake role")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// loadSecret returns the environment value, falling back to the keychain.
func loadSecret(env, key string) string {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	km, err := keychain.GetManager()
	if err != nil {
		logger.Debug("keychain unavailable")
		return ""
	}
	v, err := km.Load(key)
	if err != nil {
		return ""
	}
	return v
}

// connect opens a session. A DSN wins; otherwise a technical login; otherwise an
// interactive user. Nothing is prompted for: missing identity is an error.
func (f *connFlags) connect(ctx context.Context) (*warehouse.Connector, error) {
	opts := []warehouse.Option{warehouse.WithLogger(logger)}
	if f.yes {
		opts = append(opts, warehouse.WithConfirmer(warehouse.ConfirmFunc(func(context.Context, string) (bool, error) {
			return true, nil
		})))
	} else if terminal.IsInteractive() {
		opts = append(opts, warehouse.WithConfirmer(ptermConfirmer{}))
	}
	c := warehouse.New(opts...)

	wc := cfg.Warehouse
	account := firstNonEmpty(f.account, wc.Account)
	whName := firstNonEmpty(f.warehouse, wc.Warehouse)
	role := firstNonEmpty(f.role, wc.Role)

	var (
		label string
		run   func() error
	)
	switch {
	case firstNonEmpty(f.dsn, wc.DSN) != "":
		raw := firstNonEmpty(f.dsn, wc.DSN)
		label = logging.Mask(raw)
		run = func() error { return c.ConnectDSN(ctx, raw) }
	case firstNonEmpty(f.techLogin, wc.TechLogin) != "":
		login := firstNonEmpty(f.techLogin, wc.TechLogin)
		creds := warehouse.TechCredentials{
			Login:      login,
			PrivateKey: loadSecret(envTechKey, keychain.KeyTechPrivateKey),
			Passphrase: loadSecret(envTechPassphrase, keychain.KeyTechPassphrase),
			Account:    account,
			Warehouse:  whName,
			Role:       role,
		}
		label = "technical account " + login
		run = func() error { return c.ConnectTech(ctx, creds) }
	case firstNonEmpty(f.user, wc.User) != "":
		creds := warehouse.UserCredentials{
			User:          firstNonEmpty(f.user, wc.User),
			Authenticator: firstNonEmpty(f.authenticator, wc.Authenticator),
			Account:       account,
			Password:      os.Getenv(envPassword),
			Warehouse:     whName,
			Role:          role,
		}
		label = creds.User
		run = func() error { return c.ConnectUser(ctx, creds) }
	default:
		return nil, sferrors.New(sferrors.InvalidArgument,
			"no connection configured: pass --dsn, --tech-login or --user (or set them in config.toml)")
	}

	stop := startInlineSpinner(os.Stdout, "connecting to "+label, spinnerFrames, 100*time.Millisecond)
	err := run()
	stop()
	if err != nil {
		return nil, err
	}
	pterm.Success.Printfln("Connected to %s (%s)", label, c.Dialect().Name())
	return c, nil
}

// ptermConfirmer asks on the terminal. Anything but an explicit yes declines.
type ptermConfirmer struct{}

func (ptermConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(prompt)
	if err != nil {
		return false, errors.New("could not read confirmation from terminal")
	}
	return ok, nil
}
