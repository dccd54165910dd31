// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package table

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatStacksRowsInOrder(t *testing.T) {
	a := New("id", "name")
	require.NoError(t, a.Append(int64(1), "a"))
	require.NoError(t, a.Append(int64(2), "b"))
	b := New("id", "name")
	require.NoError(t, b.Append(int64(3), "c"))

	out, err := Concat(a, nil, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, out.Columns)
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, []any{int64(3), "c"}, out.Rows[2])
}

func TestConcatRejectsMismatchedColumns(t *testing.T) {
	_, err := Concat(New("a"), New("b"))
	require.Error(t, err)

	_, err = Concat()
	require.Error(t, err)
}

func TestAppendChecksWidth(t *testing.T) {
	tb := New("a", "b")
	require.Error(t, tb.Append(1))
}

func TestUpperColumns(t *testing.T) {
	tb := New("id", "Mixed_Case", "UPPER")
	tb.UpperColumns()
	assert.Equal(t, []string{"ID", "MIXED_CASE", "UPPER"}, tb.Columns)
}

func TestColumnKinds(t *testing.T) {
	tb := New("b", "i", "mixed_num", "mixed", "null", "ts", "raw")
	now := time.Now()
	require.NoError(t, tb.Append(true, 1, 1, 1, nil, now, []byte{1}))
	require.NoError(t, tb.Append(nil, int64(2), 2.5, "x", nil, nil, nil))

	assert.Equal(t, []Kind{KindBool, KindInt, KindFloat, KindString, KindString, KindTime, KindBytes}, tb.ColumnKinds())
}

func TestParquetRoundTripPreservesOrderAndValues(t *testing.T) {
	ts := time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)
	tb := New("zeta", "alpha", "amount", "flag", "created", "blob")
	require.NoError(t, tb.Append("z1", int64(10), 1.5, true, ts, []byte{0xde, 0xad}))
	require.NoError(t, tb.Append(nil, int64(20), nil, false, nil, nil))

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, tb))

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, tb.Columns, got.Columns)
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []any{"z1", int64(10), 1.5, true, ts, []byte{0xde, 0xad}}, got.Rows[0])
	assert.Equal(t, []any{nil, int64(20), nil, false, nil, nil}, got.Rows[1])
}

func TestParquetFileEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteParquetFile(path, New("A", "B")))

	got, err := ReadParquetFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got.Columns)
	assert.Equal(t, 0, got.NumRows())
}

func TestParquetDuplicateColumnNames(t *testing.T) {
	tb := New("ID", "ID", "1")
	require.NoError(t, tb.Append(int64(1), int64(2), "x"))

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, tb))
	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "ID", "1"}, got.Columns)
	assert.Equal(t, []any{int64(1), int64(2), "x"}, got.Rows[0])

	buf.Reset()
	require.Error(t, WriteParquetByName(&buf, tb))
	require.Error(t, WriteParquet(&buf, New()))
}

func TestMarshalJSON(t *testing.T) {
	tb := New("id", "raw", "name")
	uuid := []byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	require.NoError(t, tb.Append(uuid, []byte{0x01, 0xff}, nil))

	data, err := json.Marshal(tb)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"columns":["id","raw","name"],"rows":[["12345678-9abc-def0-0102-030405060708","\\x01ff",null]]}`,
		string(data))
}
