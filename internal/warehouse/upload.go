// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"fmt"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/table"

	"go.uber.org/zap"
)

// IfExists values accepted by Upload.
const (
	IfExistsFail      = "fail"
	IfExistsReplace   = "replace"
	IfExistsAppend    = "append"
	IfExistsDropTable = "drop_table"
)

// UploadOptions names the destination of an upload.
type UploadOptions struct {
	Database string
	Schema   string
	Table    string
	IfExists string // defaults to append
}

// Upload writes tb into the destination table and returns a confirmation line.
// Column names are upper-cased in place first. drop_table drops the destination
// and then appends; replace drops and recreates; fail refuses an existing table.
func (c *Connector) Upload(ctx context.Context, tb *table.Table, opts UploadOptions) (string, error) {
	conn, err := c.session()
	if err != nil {
		return "", err
	}
	if tb == nil {
		return "", c.fail(sferrors.InvalidArgument, "nothing to upload", nil)
	}
	t := Target{Database: opts.Database, Schema: opts.Schema, Table: opts.Table}
	if err := t.validate(); err != nil {
		return "", c.fail(sferrors.InvalidArgument, "invalid upload target", err)
	}
	mode := opts.IfExists
	switch mode {
	case "":
		mode = IfExistsAppend
	case IfExistsFail, IfExistsReplace, IfExistsAppend, IfExistsDropTable:
	default:
		return "", c.fail(sferrors.InvalidArgument, fmt.Sprintf("unsupported if_exists value %q", mode), nil)
	}

	tb.UpperColumns()
	d := c.dialect
	qualified := d.Qualify(t)

	if err := c.exec(ctx, conn, d.UseStatements(t)...); err != nil {
		return "", c.fail(sferrors.StatementFailed, "error selecting database and schema", err)
	}
	c.log.Info("uploading", zap.String("table", t.String()), zap.Int("rows", tb.NumRows()), zap.String("if_exists", mode))

	switch mode {
	case IfExistsDropTable, IfExistsReplace:
		c.log.Info("drop table", zap.String("table", qualified))
		if err := c.exec(ctx, conn, "DROP TABLE IF EXISTS "+qualified); err != nil {
			return "", c.fail(sferrors.StatementFailed, "error dropping table "+qualified, err)
		}
	case IfExistsFail:
		exists, err := d.TableExists(ctx, conn, t)
		if err != nil {
			return "", c.fail(sferrors.StatementFailed, "error checking table "+qualified, err)
		}
		if exists {
			return "", c.fail(sferrors.InvalidArgument, fmt.Sprintf("table %s already exists", qualified), nil)
		}
	}

	if err := c.exec(ctx, conn, createTableSQL(d, t, tb)); err != nil {
		return "", c.fail(sferrors.StatementFailed, "error creating table "+qualified, err)
	}
	if tb.NumRows() > 0 {
		if err := d.BulkLoad(ctx, conn, t, tb); err != nil {
			return "", c.fail(sferrors.StatementFailed, "error uploading data to "+qualified, err)
		}
	}

	msg := fmt.Sprintf("Data uploaded to %s - %d rows", t.String(), tb.NumRows())
	c.log.Info(msg)
	return msg, nil
}
