// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"database/sql"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/table"

	"go.uber.org/zap"
)

// CreateTempTable (re)creates a session-scoped temporary table populated by query.
func (c *Connector) CreateTempTable(ctx context.Context, database, schema, name, query string) error {
	conn, err := c.session()
	if err != nil {
		return err
	}
	t := Target{Database: database, Schema: schema, Table: name}
	if err := t.validate(); err != nil {
		return c.fail(sferrors.InvalidArgument, "invalid temporary table name", err)
	}
	if err := c.exec(ctx, conn, c.dialect.CreateTempTable(t, query)...); err != nil {
		return c.fail(sferrors.StatementFailed, "error creating temporary table "+t.String(), err)
	}
	c.log.Info("temporary table created", zap.String("table", t.String()))
	return nil
}

// ExecuteQuery runs query and returns the whole result set in memory.
func (c *Connector) ExecuteQuery(ctx context.Context, query string) (*table.Table, error) {
	conn, err := c.session()
	if err != nil {
		return nil, err
	}
	c.log.Debug("query", zap.String("sql", query))
	rows, err := conn.QueryContext(c.queryContext(ctx), query)
	if err != nil {
		return nil, c.fail(sferrors.StatementFailed, "error executing query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, c.fail(sferrors.StatementFailed, "error reading result columns", err)
	}
	out := table.New(cols...)
	for rows.Next() {
		vals, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, c.fail(sferrors.StatementFailed, "error scanning row", err)
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, c.fail(sferrors.StatementFailed, "error fetching rows", err)
	}
	return out, nil
}

func scanRow(rows *sql.Rows, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}
