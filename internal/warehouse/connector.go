// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package warehouse wraps a single live data-warehouse session and exposes bulk
// operations against it: temporary tables, paginated downloads to disk, ad-hoc
// queries, table uploads and row deletion.
//
// A Connector owns exactly one pinned database connection. Temporary tables are
// scoped to that connection, so all operations run on it in sequence. The
// Connector is not safe for concurrent use; callers own it from a single goroutine.
//
// Every operation returns a typed error (see internal/errors) and logs the same
// diagnostic, so callers can branch on the failure kind without reading logs.
package warehouse

import (
	"context"
	"database/sql"

	sferrors "sfkit/cli/internal/errors"

	"go.uber.org/zap"
)

// Confirmer approves destructive operations.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Connector manages one warehouse session.
type Connector struct {
	log       *zap.Logger
	confirmer Confirmer
	openSF    SnowflakeOpener

	dialect Dialect
	db      *sql.DB
	conn    *sql.Conn
	who     string
}

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Connector) {
		if l != nil {
			c.log = l
		}
	}
}

// WithConfirmer sets the confirmer consulted before a whole table is cleared.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Connector) { c.confirmer = cf }
}

// WithSnowflakeOpener replaces how Snowflake configurations are turned into a database handle.
func WithSnowflakeOpener(o SnowflakeOpener) Option {
	return func(c *Connector) {
		if o != nil {
			c.openSF = o
		}
	}
}

// New creates a disconnected Connector.
func New(opts ...Option) *Connector {
	c := &Connector{
		log:    zap.NewNop(),
		openSF: openSnowflake,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connected reports whether a session is open.
func (c *Connector) Connected() bool { return c.conn != nil }

// Dialect returns the dialect of the open session, or nil when disconnected.
func (c *Connector) Dialect() Dialect { return c.dialect }

// attach pins one connection from db as the session. On failure db is closed and
// the connector stays disconnected.
func (c *Connector) attach(ctx context.Context, db *sql.DB, d Dialect, who string) error {
	conn, err := db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
		if err != nil {
			_ = conn.Close()
		}
	}
	if err != nil {
		_ = db.Close()
		return err
	}
	c.Disconnect()
	c.db, c.conn, c.dialect, c.who = db, conn, d, who
	return nil
}

// Disconnect closes the session if one is open. It is safe to call repeatedly.
func (c *Connector) Disconnect() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		c.log.Warn("close warehouse connection", zap.Error(err))
	}
	if err := c.db.Close(); err != nil {
		c.log.Warn("close warehouse pool", zap.Error(err))
	}
	c.log.Info("disconnected from warehouse", zap.String("session", c.who), zap.String("dialect", c.dialect.Name()))
	c.db, c.conn, c.dialect, c.who = nil, nil, nil, ""
}

// queryContext lets the session's dialect adjust ctx before rows are read.
func (c *Connector) queryContext(ctx context.Context) context.Context {
	if q, ok := c.dialect.(interface {
		queryContext(context.Context) context.Context
	}); ok {
		return q.queryContext(ctx)
	}
	return ctx
}

func (c *Connector) session() (*sql.Conn, error) {
	if c.conn == nil {
		return nil, sferrors.New(sferrors.NotConnected, "no open warehouse session; connect first")
	}
	return c.conn, nil
}

// fail logs a diagnostic and returns the matching typed error.
func (c *Connector) fail(kind sferrors.Kind, msg string, err error) error {
	c.log.Error(msg, zap.String("kind", string(kind)), zap.Error(err))
	if err == nil {
		return sferrors.New(kind, msg)
	}
	return sferrors.Wrap(kind, msg, err)
}

func (c *Connector) exec(ctx context.Context, conn *sql.Conn, stmts ...string) error {
	for _, s := range stmts {
		c.log.Debug("exec", zap.String("sql", s))
		if _, err := conn.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
