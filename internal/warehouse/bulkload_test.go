// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"math"
	"math/big"
	"strings"
	"sync"
	"testing"

	"sfkit/cli/internal/table"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recorder is a database/sql connector that records executed statements and
// fails those starting with one of failOn.
type recorder struct {
	mu     sync.Mutex
	stmts  []string
	failOn []string
}

func (r *recorder) Connect(context.Context) (driver.Conn, error) { return recorderConn{r}, nil }
func (r *recorder) Driver() driver.Driver                        { return nil }

func (r *recorder) executed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

type recorderConn struct{ r *recorder }

func (recorderConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (recorderConn) Close() error                        { return nil }
func (recorderConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c recorderConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.r.stmts = append(c.r.stmts, query)
	for _, p := range c.r.failOn {
		if strings.HasPrefix(query, p) {
			return nil, errors.New("statement rejected")
		}
	}
	return driver.RowsAffected(0), nil
}

func recorderSession(t *testing.T, r *recorder) *sql.Conn {
	t.Helper()
	db := sql.OpenDB(r)
	t.Cleanup(func() { db.Close() })
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func uploadTable(t *testing.T) *table.Table {
	t.Helper()
	tb := table.New("ID", "NAME")
	require.NoError(t, tb.Append(int64(1), "ada"))
	return tb
}

func TestSnowflakeBulkLoadDropsStage(t *testing.T) {
	r := &recorder{}
	core, logs := observer.New(zap.WarnLevel)
	d := Snowflake{log: zap.New(core)}

	require.NoError(t, d.BulkLoad(context.Background(), recorderSession(t, r), Target{Table: "PEOPLE"}, uploadTable(t)))

	stmts := r.executed()
	require.Len(t, stmts, 4)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TEMPORARY STAGE SFKIT_UPLOAD_"))
	assert.True(t, strings.HasPrefix(stmts[1], "PUT 'file://"))
	assert.True(t, strings.HasPrefix(stmts[2], "COPY INTO PEOPLE FROM @SFKIT_UPLOAD_"))
	assert.True(t, strings.HasPrefix(stmts[3], "DROP STAGE IF EXISTS SFKIT_UPLOAD_"))
	assert.Zero(t, logs.Len())
}

func TestSnowflakeBulkLoadDropsStageAfterFailure(t *testing.T) {
	r := &recorder{failOn: []string{"COPY INTO", "DROP STAGE"}}
	core, logs := observer.New(zap.WarnLevel)
	d := Snowflake{log: zap.New(core)}

	err := d.BulkLoad(context.Background(), recorderSession(t, r), Target{Table: "PEOPLE"}, uploadTable(t))
	require.Error(t, err)

	stmts := r.executed()
	require.Len(t, stmts, 4)
	assert.True(t, strings.HasPrefix(stmts[3], "DROP STAGE IF EXISTS SFKIT_UPLOAD_"))
	assert.Equal(t, 1, logs.FilterMessage("drop upload stage").Len())
}

func TestSnowflakeBulkLoadWithoutStage(t *testing.T) {
	r := &recorder{failOn: []string{"CREATE TEMPORARY STAGE"}}
	err := Snowflake{}.BulkLoad(context.Background(), recorderSession(t, r), Target{Table: "PEOPLE"}, uploadTable(t))
	require.Error(t, err)
	assert.Len(t, r.executed(), 1)
}

func TestSnowflakeQueriesUseHigherPrecision(t *testing.T) {
	base := context.Background()
	c := &Connector{dialect: Snowflake{}}
	assert.Equal(t, gosnowflake.WithHigherPrecision(base), c.queryContext(base))

	c.dialect = SQLite{}
	assert.Equal(t, base, c.queryContext(base))
}

func TestDriverValue(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	assert.Equal(t, int64(42), driverValue(big.NewInt(42)))
	assert.Equal(t, huge.String(), driverValue(huge))
	assert.Equal(t, 1.5, driverValue(big.NewFloat(1.5)))
	assert.Equal(t, "18446744073709551615", driverValue(uint64(math.MaxUint64)))
	assert.Equal(t, int64(7), driverValue(uint64(7)))
	assert.Equal(t, "x", driverValue("x"))
}
