// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sfkit/cli/internal/dsn"
	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/logging"

	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// DefaultAccount is used when credentials leave the account empty.
const DefaultAccount = "prod"

// UserCredentials identify an interactive user session.
type UserCredentials struct {
	User          string
	Authenticator string // defaults to externalbrowser
	Account       string // defaults to DefaultAccount
	Password      string // only for the snowflake and username_password_mfa authenticators
	Warehouse     string
	Role          string
}

// TechCredentials identify a key-authenticated technical account.
type TechCredentials struct {
	Login      string
	PrivateKey string // PEM text; literal "\n" sequences are accepted
	Passphrase string
	Account    string // defaults to DefaultAccount
	Warehouse  string
	Role       string
}

func account(a string) string {
	if strings.TrimSpace(a) == "" {
		return DefaultAccount
	}
	return strings.TrimSpace(a)
}

// ConnectUser opens a Snowflake session for a named user. On failure the session
// stays unset and a connect_failed error is returned.
func (c *Connector) ConnectUser(ctx context.Context, creds UserCredentials) error {
	if strings.TrimSpace(creds.User) == "" {
		return c.fail(sferrors.InvalidArgument, "snowflake user is required", nil)
	}
	cfg := &gosnowflake.Config{
		Account:   account(creds.Account),
		User:      creds.User,
		Password:  creds.Password,
		Warehouse: creds.Warehouse,
		Role:      creds.Role,
	}
	if err := applyAuthenticator(cfg, creds.Authenticator); err != nil {
		return c.fail(sferrors.InvalidArgument, "invalid authenticator", err)
	}
	if err := c.connectSnowflake(ctx, cfg, "user "+creds.User); err != nil {
		return c.fail(sferrors.ConnectFailed, "error connecting to snowflake", err)
	}
	c.log.Info("connected to snowflake", zap.String("user", creds.User), zap.String("account", cfg.Account))
	return nil
}

// ConnectTech opens a Snowflake session for a technical account using key-pair
// authentication.
func (c *Connector) ConnectTech(ctx context.Context, creds TechCredentials) error {
	if strings.TrimSpace(creds.Login) == "" || strings.TrimSpace(creds.PrivateKey) == "" {
		return c.fail(sferrors.InvalidArgument, "technical login and private key are required", nil)
	}
	key, _, err := ParsePrivateKey(creds.PrivateKey, creds.Passphrase)
	if err != nil {
		return c.fail(sferrors.ConnectFailed, "error loading technical account key", err)
	}
	cfg := &gosnowflake.Config{
		Account:       account(creds.Account),
		User:          creds.Login,
		Authenticator: gosnowflake.AuthTypeJwt,
		PrivateKey:    key,
		Warehouse:     creds.Warehouse,
		Role:          creds.Role,
	}
	if err := c.connectSnowflake(ctx, cfg, "tech "+creds.Login); err != nil {
		return c.fail(sferrors.ConnectFailed, "error connecting to snowflake with technical account", err)
	}
	c.log.Info("connected to snowflake with technical account", zap.String("login", creds.Login), zap.String("account", cfg.Account))
	return nil
}

func (c *Connector) connectSnowflake(ctx context.Context, cfg *gosnowflake.Config, who string) error {
	db, err := c.openSF(cfg)
	if err != nil {
		return err
	}
	return c.attach(ctx, db, Snowflake{log: c.log}, who)
}

// ConnectDSN opens a session from a data source name. The dialect follows the
// scheme: postgres://, snowflake://, sqlite:// or file:.
func (c *Connector) ConnectDSN(ctx context.Context, raw string) error {
	normalized, err := dsn.Parse(raw)
	if err != nil {
		return c.fail(sferrors.InvalidArgument, "invalid DSN", err)
	}
	masked := logging.Mask(raw)

	var (
		db *sql.DB
		d  Dialect
	)
	switch dsn.DetectDBType(raw) {
	case dsn.DBTypePostgreSQL:
		db, err = sql.Open("pgx", normalized)
		d = Postgres{}
	case dsn.DBTypeSQLite:
		db, err = sql.Open("sqlite", normalized)
		d = SQLite{}
	case dsn.DBTypeSnowflake:
		var cfg *gosnowflake.Config
		if cfg, err = gosnowflake.ParseDSN(normalized); err == nil {
			db, err = c.openSF(cfg)
		}
		d = Snowflake{log: c.log}
	default:
		err = fmt.Errorf("unsupported DSN scheme")
	}
	if err == nil {
		err = c.attach(ctx, db, d, masked)
	}
	if err != nil {
		return c.fail(sferrors.ConnectFailed, "error connecting to "+masked, err)
	}
	c.log.Info("connected", zap.String("dialect", d.Name()), zap.String("dsn", masked))
	return nil
}
