// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"sfkit/cli/internal/table"

	"github.com/google/uuid"
	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"
)

// SnowflakeOpener turns a driver configuration into a database handle.
type SnowflakeOpener func(cfg *gosnowflake.Config) (*sql.DB, error)

func openSnowflake(cfg *gosnowflake.Config) (*sql.DB, error) {
	connector := gosnowflake.NewConnector(gosnowflake.SnowflakeDriver{}, *cfg)
	return sql.OpenDB(connector), nil
}

// Authenticator kinds accepted in user mode.
const (
	AuthExternalBrowser = "externalbrowser"
	AuthSnowflake       = "snowflake"
	AuthOAuth           = "oauth"
	AuthJWT             = "snowflake_jwt"
	AuthPasswordMFA     = "username_password_mfa"
)

// applyAuthenticator sets cfg.Authenticator from a textual kind. An https URL
// selects native Okta SSO.
func applyAuthenticator(cfg *gosnowflake.Config, kind string) error {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", AuthExternalBrowser:
		cfg.Authenticator = gosnowflake.AuthTypeExternalBrowser
	case AuthSnowflake:
		cfg.Authenticator = gosnowflake.AuthTypeSnowflake
	case AuthOAuth:
		cfg.Authenticator = gosnowflake.AuthTypeOAuth
	case AuthJWT:
		cfg.Authenticator = gosnowflake.AuthTypeJwt
	case AuthPasswordMFA:
		cfg.Authenticator = gosnowflake.AuthTypeUsernamePasswordMFA
	default:
		u, err := url.Parse(kind)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("unknown authenticator %q", kind)
		}
		cfg.Authenticator = gosnowflake.AuthTypeOkta
		cfg.OktaURL = u
	}
	return nil
}

// Snowflake is the default dialect. Queries run with higher precision so
// NUMBER columns arrive as int64, *big.Int or *big.Float instead of text.
type Snowflake struct {
	log *zap.Logger
}

func (d Snowflake) logger() *zap.Logger {
	if d.log == nil {
		return zap.NewNop()
	}
	return d.log
}

func (Snowflake) queryContext(ctx context.Context) context.Context {
	return gosnowflake.WithHigherPrecision(ctx)
}

func (Snowflake) Name() string { return "snowflake" }

func (Snowflake) Qualify(t Target) string { return t.String() }

func (Snowflake) UseStatements(t Target) []string {
	var out []string
	if t.Database != "" {
		out = append(out, "USE DATABASE "+t.Database)
	}
	if t.Schema != "" {
		out = append(out, "USE SCHEMA "+t.Schema)
	}
	return out
}

func (d Snowflake) CreateTempTable(t Target, query string) []string {
	return []string{fmt.Sprintf("CREATE OR REPLACE TEMPORARY TABLE %s AS (%s)", d.Qualify(t), query)}
}

func (Snowflake) ColumnType(k table.Kind) string {
	switch k {
	case table.KindBool:
		return "BOOLEAN"
	case table.KindInt:
		return "NUMBER(38,0)"
	case table.KindFloat:
		return "FLOAT"
	case table.KindBytes:
		return "BINARY"
	case table.KindTime:
		return "TIMESTAMP_NTZ"
	default:
		return "VARCHAR"
	}
}

func (Snowflake) TableExists(ctx context.Context, conn *sql.Conn, t Target) (bool, error) {
	infoSchema := "INFORMATION_SCHEMA.TABLES"
	if t.Database != "" {
		infoSchema = t.Database + "." + infoSchema
	}
	q := "SELECT COUNT(*) FROM " + infoSchema + " WHERE TABLE_NAME = ?"
	args := []any{strings.ToUpper(t.Table)}
	if t.Schema != "" {
		q += " AND TABLE_SCHEMA = ?"
		args = append(args, strings.ToUpper(t.Schema))
	}
	return countExists(ctx, conn, q, args...)
}

// BulkLoad writes the table to a parquet file, stages it with PUT and loads it
// with COPY INTO, matching columns by name. The stage is dropped whatever the
// outcome.
func (d Snowflake) BulkLoad(ctx context.Context, conn *sql.Conn, t Target, tb *table.Table) (err error) {
	f, err := os.CreateTemp("", "sfkit-upload-*.parquet")
	if err != nil {
		return err
	}
	path := f.Name()
	defer os.Remove(path)
	if err := table.WriteParquetByName(f, tb); err != nil {
		f.Close()
		return fmt.Errorf("encode upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	stage := "SFKIT_UPLOAD_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "_"))
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE TEMPORARY STAGE %s FILE_FORMAT = (TYPE = PARQUET USE_LOGICAL_TYPE = TRUE)", stage)); err != nil {
		return fmt.Errorf("create stage: %w", err)
	}
	defer func() {
		if _, dropErr := conn.ExecContext(context.WithoutCancel(ctx), "DROP STAGE IF EXISTS "+stage); dropErr != nil {
			d.logger().Warn("drop upload stage", zap.String("stage", stage), zap.Error(dropErr))
		}
	}()

	stmts := []string{
		fmt.Sprintf("PUT 'file://%s' @%s AUTO_COMPRESS = FALSE OVERWRITE = TRUE", filepath.ToSlash(abs), stage),
		fmt.Sprintf("COPY INTO %s FROM @%s FILE_FORMAT = (TYPE = PARQUET USE_LOGICAL_TYPE = TRUE) MATCH_BY_COLUMN_NAME = CASE_SENSITIVE PURGE = TRUE", d.Qualify(t), stage),
	}
	for _, s := range stmts {
		if _, err := conn.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
