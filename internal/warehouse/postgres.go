// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sfkit/cli/internal/table"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Postgres targets PostgreSQL through pgx. A session is bound to one database, so
// the database part of a target is not rendered.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Qualify(t Target) string {
	if t.Schema == "" {
		return t.Table
	}
	return t.Schema + "." + t.Table
}

func (Postgres) UseStatements(Target) []string { return nil }

// CreateTempTable ignores database and schema: temporary tables live in pg_temp.
func (Postgres) CreateTempTable(t Target, query string) []string {
	return []string{
		"DROP TABLE IF EXISTS pg_temp." + t.Table,
		fmt.Sprintf("CREATE TEMPORARY TABLE %s AS (%s)", t.Table, query),
	}
}

func (Postgres) ColumnType(k table.Kind) string {
	switch k {
	case table.KindBool:
		return "BOOLEAN"
	case table.KindInt:
		return "BIGINT"
	case table.KindFloat:
		return "DOUBLE PRECISION"
	case table.KindBytes:
		return "BYTEA"
	case table.KindTime:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func (Postgres) TableExists(ctx context.Context, conn *sql.Conn, t Target) (bool, error) {
	return countExists(ctx, conn,
		`SELECT COUNT(*) FROM information_schema.tables
		 WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND table_name = $2`,
		strings.ToLower(t.Schema), strings.ToLower(t.Table))
}

// BulkLoad streams rows with the COPY protocol.
func (Postgres) BulkLoad(ctx context.Context, conn *sql.Conn, t Target, tb *table.Table) error {
	ident := pgx.Identifier{strings.ToLower(t.Table)}
	if t.Schema != "" {
		ident = pgx.Identifier{strings.ToLower(t.Schema), strings.ToLower(t.Table)}
	}
	rows := make([][]any, len(tb.Rows))
	for i, r := range tb.Rows {
		out := make([]any, len(r))
		for j, v := range r {
			out[j] = driverValue(v)
		}
		rows[i] = out
	}
	return conn.Raw(func(driverConn any) error {
		pc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		_, err := pc.Conn().CopyFrom(ctx, ident, tb.Columns, pgx.CopyFromRows(rows))
		return err
	})
}
