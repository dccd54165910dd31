// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"sfkit/cli/internal/table"
)

// Target names a table, optionally qualified by database and schema.
type Target struct {
	Database string
	Schema   string
	Table    string
}

func (t Target) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Database, t.Schema, t.Table} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// validate checks every non-empty part is a plain identifier; the table is required.
func (t Target) validate() error {
	if t.Table == "" {
		return fmt.Errorf("table name is required")
	}
	for _, p := range []string{t.Database, t.Schema, t.Table} {
		if p != "" && !identRe.MatchString(p) {
			return fmt.Errorf("invalid identifier %q", p)
		}
	}
	return nil
}

// quoteIdent double-quotes a column name.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Dialect renders statements and performs bulk loads for one warehouse engine.
type Dialect interface {
	Name() string
	// Qualify renders the target as it appears in SQL.
	Qualify(t Target) string
	// UseStatements selects the target's database and schema for the session.
	UseStatements(t Target) []string
	// CreateTempTable returns the statements that (re)create a temporary table from query.
	CreateTempTable(t Target, query string) []string
	// ColumnType maps an inferred column kind to a column type.
	ColumnType(k table.Kind) string
	TableExists(ctx context.Context, conn *sql.Conn, t Target) (bool, error)
	BulkLoad(ctx context.Context, conn *sql.Conn, t Target, tb *table.Table) error
}

// createTableSQL renders CREATE TABLE IF NOT EXISTS with inferred column types.
func createTableSQL(d Dialect, t Target, tb *table.Table) string {
	kinds := tb.ColumnKinds()
	cols := make([]string, len(tb.Columns))
	for i, name := range tb.Columns {
		cols[i] = quoteIdent(name) + " " + d.ColumnType(kinds[i])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.Qualify(t), strings.Join(cols, ", "))
}

func countExists(ctx context.Context, conn *sql.Conn, query string, args ...any) (bool, error) {
	var n int
	if err := conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "snowflake":
		return Snowflake{}, nil
	case "postgres", "postgresql", "pgx":
		return Postgres{}, nil
	case "sqlite":
		return SQLite{}, nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}

// driverValue converts arbitrary-precision numbers for drivers that only accept
// native types. Integers beyond int64 are passed as text, matching the VARCHAR
// column such values infer.
func driverValue(v any) any {
	switch x := v.(type) {
	case *big.Float:
		f, _ := x.Float64()
		return f
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		return x.String()
	case uint64:
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	}
	return v
}
