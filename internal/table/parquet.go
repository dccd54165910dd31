// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

// ColumnsMetadataKey stores the real column names in order. Leaves are named by
// position so results with repeated names still encode.
const ColumnsMetadataKey = "sfkit.columns"

// ErrNestedSchema is returned when reading a parquet file whose columns are not
// all top-level leaves.
var ErrNestedSchema = errors.New("parquet file has nested columns; only flat schemas can be loaded")

// LeafName is the parquet leaf name of the column at position i.
func LeafName(i int) string { return fmt.Sprintf("c%04d", i) }

// Schema builds a flat parquet schema of optional leaves named leaves[i] with
// kinds[i].
func Schema(leaves []string, kinds []Kind) (*parquet.Schema, error) {
	if len(leaves) == 0 {
		return nil, errors.New("table has no columns")
	}
	group := parquet.Group{}
	for i, name := range leaves {
		if _, dup := group[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		var n parquet.Node
		switch kinds[i] {
		case KindBool:
			n = parquet.Leaf(parquet.BooleanType)
		case KindInt:
			n = parquet.Int(64)
		case KindFloat:
			n = parquet.Leaf(parquet.DoubleType)
		case KindBytes:
			n = parquet.Leaf(parquet.ByteArrayType)
		case KindTime:
			n = parquet.Timestamp(parquet.Nanosecond)
		default:
			n = parquet.String()
		}
		group[name] = parquet.Optional(n)
	}
	return parquet.NewSchema("", group), nil
}

// WriteParquet encodes the table as a snappy-compressed parquet file with
// positional leaf names. Any column names, repeated ones included, round-trip
// through ReadParquet.
func WriteParquet(w io.Writer, t *Table) error {
	leaves := make([]string, len(t.Columns))
	for i := range leaves {
		leaves[i] = LeafName(i)
	}
	return writeParquet(w, t, leaves)
}

// WriteParquetByName encodes the table with leaves named after its columns, for
// loaders that match parquet columns by name. Column names must be unique.
func WriteParquetByName(w io.Writer, t *Table) error {
	return writeParquet(w, t, t.Columns)
}

func writeParquet(w io.Writer, t *Table, leaves []string) error {
	kinds := t.ColumnKinds()
	schema, err := Schema(leaves, kinds)
	if err != nil {
		return err
	}
	order, err := json.Marshal(t.Columns)
	if err != nil {
		return err
	}

	// Leaf index in the sorted schema for each table column.
	position := make([]int, len(leaves))
	for i, name := range leaves {
		leaf, ok := schema.Lookup(name)
		if !ok {
			return fmt.Errorf("invariant failed: unable to find column %q", name)
		}
		position[i] = leaf.ColumnIndex
	}

	pw := parquet.NewGenericWriter[any](w, schema,
		parquet.Compression(&parquet.Snappy),
		parquet.KeyValueMetadata(ColumnsMetadataKey, string(order)),
	)
	rows := make([]parquet.Row, 0, len(t.Rows))
	for r, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", r, len(row), len(t.Columns))
		}
		out := make(parquet.Row, len(row))
		for i, v := range row {
			pv, err := toParquetValue(kinds[i], v)
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", r, t.Columns[i], err)
			}
			def := 1
			if v == nil {
				def = 0
			}
			out[position[i]] = pv.Level(0, def, position[i])
		}
		rows = append(rows, out)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		return err
	}
	return pw.Close()
}

func toParquetValue(kind Kind, v any) (parquet.Value, error) {
	if v == nil {
		return parquet.ValueOf(nil), nil
	}
	switch kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected bool, got %T", v)
		}
		return parquet.ValueOf(b), nil
	case KindInt:
		i, err := asInt64(v)
		if err != nil {
			return parquet.Value{}, err
		}
		return parquet.ValueOf(i), nil
	case KindFloat:
		f, err := asFloat64(v)
		if err != nil {
			return parquet.Value{}, err
		}
		return parquet.ValueOf(f), nil
	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected bytes, got %T", v)
		}
		return parquet.ValueOf(b), nil
	case KindTime:
		ts, ok := v.(time.Time)
		if !ok {
			return parquet.Value{}, fmt.Errorf("expected time, got %T", v)
		}
		return parquet.ValueOf(ts.UnixNano()), nil
	default:
		return parquet.ValueOf(StringValue(v)), nil
	}
}

// StringValue renders a driver value as text.
func StringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case *big.Float:
		return x.Text('g', -1)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return asInt64(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", x)
		}
		return int64(x), nil
	case *big.Int:
		if !x.IsInt64() {
			return 0, fmt.Errorf("integer %s overflows int64", x)
		}
		return x.Int64(), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case *big.Float:
		f, _ := x.Float64()
		return f, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, nil
	}
	i, err := asInt64(v)
	if err != nil {
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	return float64(i), nil
}

// WriteParquetFile writes the table to path, replacing any existing file.
func WriteParquetFile(path string, t *Table) error {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, t); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadParquet decodes a flat parquet file. Column names come from the
// ColumnsMetadataKey entry when present; files written elsewhere keep their
// schema's field order. Nested columns are rejected with ErrNestedSchema.
func ReadParquet(r io.ReaderAt, size int64) (*Table, error) {
	inFile, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, err
	}

	pRdr := parquet.NewGenericReader[any](inFile)
	defer pRdr.Close()

	schema := pRdr.Schema()
	fields := schema.Fields()
	if len(schema.Columns()) != len(fields) {
		return nil, ErrNestedSchema
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		if !f.Leaf() {
			return nil, ErrNestedSchema
		}
		names[i] = f.Name()
	}

	columns, target, err := columnLayout(inFile, names)
	if err != nil {
		return nil, err
	}

	t := New(columns...)
	rowBuf := make([]parquet.Row, 64)
	for {
		n, err := pRdr.ReadRows(rowBuf)
		for _, row := range rowBuf[:n] {
			out := make([]any, len(columns))
			for _, value := range row {
				leaf := value.Column()
				if leaf < 0 || leaf >= len(fields) {
					return nil, fmt.Errorf("value for unknown column %d", leaf)
				}
				out[target[leaf]] = fromParquetValue(fields[leaf], value)
			}
			t.Rows = append(t.Rows, out)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return t, nil
}

// columnLayout returns the table columns and, per schema leaf, the output
// position of that leaf.
func columnLayout(f *parquet.File, leaves []string) ([]string, []int, error) {
	target := make([]int, len(leaves))
	for i := range target {
		target[i] = i
	}
	raw, ok := f.Lookup(ColumnsMetadataKey)
	if !ok {
		return leaves, target, nil
	}
	var columns []string
	if err := json.Unmarshal([]byte(raw), &columns); err != nil {
		return nil, nil, fmt.Errorf("decode column order: %w", err)
	}
	if len(columns) != len(leaves) {
		return nil, nil, fmt.Errorf("column metadata lists %d columns, schema has %d", len(columns), len(leaves))
	}

	positional := true
	for i, name := range leaves {
		if name != LeafName(i) {
			positional = false
			break
		}
	}
	if positional {
		return columns, target, nil
	}

	// Leaves named after the columns themselves.
	index := make(map[string]int, len(leaves))
	for i, n := range leaves {
		index[n] = i
	}
	for out, name := range columns {
		leaf, ok := index[name]
		if !ok {
			return nil, nil, fmt.Errorf("column %q missing from parquet schema", name)
		}
		target[leaf] = out
	}
	return columns, target, nil
}

func fromParquetValue(field parquet.Field, value parquet.Value) any {
	if value.IsNull() {
		return nil
	}
	logType := field.Type().LogicalType()
	switch value.Kind() {
	case parquet.Boolean:
		return value.Boolean()
	case parquet.Int32:
		if logType != nil && logType.Date != nil {
			return time.Unix(int64(value.Int32())*secondsPerDay, 0).UTC()
		}
		return int64(value.Int32())
	case parquet.Int64:
		if logType != nil && logType.Timestamp != nil {
			return timestampValue(logType.Timestamp.Unit, value.Int64())
		}
		return value.Int64()
	case parquet.Float:
		return float64(value.Float())
	case parquet.Double:
		return value.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if logType != nil && logType.UTF8 != nil {
			return string(value.ByteArray())
		}
		c := make([]byte, len(value.ByteArray()))
		copy(c, value.ByteArray())
		return c
	default:
		return value.String()
	}
}

const secondsPerDay = 24 * 60 * 60

func timestampValue(unit format.TimeUnit, v int64) time.Time {
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(v).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(v).UTC()
	default:
		return time.Unix(0, v).UTC()
	}
}

// ReadParquetFile reads a parquet file from disk.
func ReadParquetFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return ReadParquet(f, st.Size())
}
