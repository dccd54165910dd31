// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package table

import (
	"bytes"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRows encodes rows with a schema derived from T, the way other tools
// produce parquet files.
func writeRows[T any](t *testing.T, rows ...T) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[T](&buf)
	_, err := w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return bytes.NewReader(buf.Bytes())
}

func column(t *testing.T, tb *Table, name string) int {
	t.Helper()
	for i, c := range tb.Columns {
		if c == name {
			return i
		}
	}
	t.Fatalf("column %q not in %v", name, tb.Columns)
	return -1
}

func TestReadParquetRejectsNestedColumns(t *testing.T) {
	type inner struct {
		A int64 `parquet:"a"`
		B int64 `parquet:"b"`
	}
	type record struct {
		ID    int64 `parquet:"id"`
		Inner inner `parquet:"inner"`
	}
	r := writeRows(t, record{ID: 1, Inner: inner{A: 2, B: 3}})

	_, err := ReadParquet(r, r.Size())
	assert.ErrorIs(t, err, ErrNestedSchema)
}

func TestReadParquetTimestampUnitsAndDates(t *testing.T) {
	type event struct {
		ID    int64 `parquet:"id"`
		Milli int64 `parquet:"at_ms,timestamp(millisecond)"`
		Micro int64 `parquet:"at_us,timestamp(microsecond)"`
		Nano  int64 `parquet:"at_ns,timestamp(nanosecond)"`
		Day   int32 `parquet:"day,date"`
	}
	at := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	r := writeRows(t, event{
		ID:    7,
		Milli: at.UnixMilli(),
		Micro: at.UnixMicro(),
		Nano:  at.UnixNano(),
		Day:   int32(day.Unix() / 86400),
	})

	got, err := ReadParquet(r, r.Size())
	require.NoError(t, err)
	require.Equal(t, 1, got.NumRows())
	row := got.Rows[0]
	assert.Equal(t, int64(7), row[column(t, got, "id")])
	assert.Equal(t, at, row[column(t, got, "at_ms")])
	assert.Equal(t, at, row[column(t, got, "at_us")])
	assert.Equal(t, at, row[column(t, got, "at_ns")])
	assert.Equal(t, day, row[column(t, got, "day")])
}

func TestWriteParquetByNameUsesColumnNames(t *testing.T) {
	tb := New("NAME", "SCORE")
	require.NoError(t, tb.Append("ada", int64(3)))

	var buf bytes.Buffer
	require.NoError(t, WriteParquetByName(&buf, tb))
	f, err := parquet.OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	_, ok := f.Schema().Lookup("NAME")
	assert.True(t, ok)
	_, ok = f.Schema().Lookup(LeafName(0))
	assert.False(t, ok)

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, tb.Columns, got.Columns)
	assert.Equal(t, tb.Rows, got.Rows)
}

func TestWideIntegers(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 70)

	assert.Equal(t, KindInt, KindOfValue(big.NewInt(42)))
	assert.Equal(t, KindString, KindOfValue(huge))
	assert.Equal(t, KindInt, KindOfValue(uint64(math.MaxInt64)))
	assert.Equal(t, KindString, KindOfValue(uint64(math.MaxUint64)))

	_, err := asInt64(uint64(math.MaxUint64))
	assert.Error(t, err)
	_, err = asInt64(huge)
	assert.Error(t, err)
	n, err := asInt64(big.NewInt(-5))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), n)
	f, err := asFloat64(big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, 4.0, f)

	tb := New("N")
	require.NoError(t, tb.Append(big.NewInt(1)))
	require.NoError(t, tb.Append(uint64(math.MaxUint64)))
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, tb))
	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, []any{"1"}, got.Rows[0])
	assert.Equal(t, []any{"18446744073709551615"}, got.Rows[1])
}
