// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"fmt"
	"strings"

	sferrors "sfkit/cli/internal/errors"

	"go.uber.org/zap"
)

// DeleteOptions selects rows to delete. Condition is the SQL text after WHERE,
// for example PREDICTION_AT = '1990-05-15'.
type DeleteOptions struct {
	Database  string
	Schema    string
	Table     string
	Condition string
	All       bool
}

// DeleteResult reports what Delete did.
type DeleteResult struct {
	Skipped      bool  // the confirmer declined a full clean
	RowsAffected int64 // -1 when the driver does not report it
}

// Delete removes rows matching Condition, or every row when All is set. Clearing a
// whole table requires the configured Confirmer to approve; a refusal is not an
// error and yields Skipped.
func (c *Connector) Delete(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	conn, err := c.session()
	if err != nil {
		return nil, err
	}
	t := Target{Database: opts.Database, Schema: opts.Schema, Table: opts.Table}
	if err := t.validate(); err != nil {
		return nil, c.fail(sferrors.InvalidArgument, "invalid delete target", err)
	}
	cond := strings.TrimSpace(opts.Condition)
	if !opts.All && cond == "" {
		return nil, c.fail(sferrors.InvalidArgument, "a delete condition is required unless all rows are deleted", nil)
	}

	d := c.dialect
	stmt := "DELETE FROM " + d.Qualify(t)
	if opts.All {
		if c.confirmer == nil {
			return nil, c.fail(sferrors.ConfirmationRequired, "clearing a whole table needs a confirmer", nil)
		}
		ok, err := c.confirmer.Confirm(ctx, fmt.Sprintf("Are you sure you want to clean table %s?", t.String()))
		if err != nil {
			return nil, c.fail(sferrors.ConfirmationRequired, "confirmation failed", err)
		}
		if !ok {
			c.log.Info("delete all declined", zap.String("table", t.String()))
			return &DeleteResult{Skipped: true, RowsAffected: 0}, nil
		}
		c.log.Info("delete all", zap.String("table", t.String()))
	} else {
		stmt += " WHERE " + cond
		c.log.Info("delete part", zap.String("table", t.String()), zap.String("condition", cond))
	}

	if err := c.exec(ctx, conn, d.UseStatements(t)...); err != nil {
		return nil, c.fail(sferrors.StatementFailed, "error selecting database and schema", err)
	}
	r, err := conn.ExecContext(ctx, stmt)
	if err != nil {
		return nil, c.fail(sferrors.StatementFailed, "error deleting from "+t.String(), err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		n = -1
	}
	c.log.Info("delete done", zap.String("table", t.String()), zap.Int64("rows", n))
	return &DeleteResult{RowsAffected: n}, nil
}
