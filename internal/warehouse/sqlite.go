// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sfkit/cli/internal/table"
)

// SQLite serves local warehouse files. Database and schema are not rendered;
// "temp" and "main" schemas are the only ones SQLite knows about.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Qualify(t Target) string {
	switch strings.ToLower(t.Schema) {
	case "main", "temp":
		return t.Schema + "." + t.Table
	}
	return t.Table
}

func (SQLite) UseStatements(Target) []string { return nil }

func (SQLite) CreateTempTable(t Target, query string) []string {
	return []string{
		"DROP TABLE IF EXISTS temp." + t.Table,
		fmt.Sprintf("CREATE TEMP TABLE %s AS %s", t.Table, query),
	}
}

func (SQLite) ColumnType(k table.Kind) string {
	switch k {
	case table.KindBool, table.KindInt:
		return "INTEGER"
	case table.KindFloat:
		return "REAL"
	case table.KindBytes:
		return "BLOB"
	case table.KindTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (SQLite) TableExists(ctx context.Context, conn *sql.Conn, t Target) (bool, error) {
	master := "sqlite_master"
	if strings.EqualFold(t.Schema, "temp") {
		master = "sqlite_temp_master"
	}
	return countExists(ctx, conn,
		"SELECT COUNT(*) FROM "+master+" WHERE type = 'table' AND lower(name) = lower(?)", t.Table)
}

// BulkLoad inserts all rows with one prepared statement inside a transaction.
func (d SQLite) BulkLoad(ctx context.Context, conn *sql.Conn, t Target, tb *table.Table) error {
	cols := make([]string, len(tb.Columns))
	marks := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Qualify(t), strings.Join(cols, ", "), strings.Join(marks, ", "))

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range tb.Rows {
		args := make([]any, len(r))
		for j, v := range r {
			args[j] = driverValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}
