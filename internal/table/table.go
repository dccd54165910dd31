// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package table holds the rectangular in-memory result sets exchanged between the
// warehouse connector, the on-disk shards and the CLI renderers.
//
// A Table is deliberately plain: ordered column names and a slice of rows, each row
// holding driver values as returned by database/sql. Column kinds are inferred from
// the values when a typed representation is needed (Parquet files, DDL).
package table

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

// Table is a rectangular result set.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds one row. The row must have one value per column.
func (t *Table) Append(row ...any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// UpperColumns upper-cases every column name in place.
func (t *Table) UpperColumns() {
	for i, c := range t.Columns {
		t.Columns[i] = strings.ToUpper(c)
	}
}

// Concat stacks the rows of tables in argument order. All tables must share the
// same column names; nil tables are skipped.
func Concat(tables ...*Table) (*Table, error) {
	var out *Table
	for i, t := range tables {
		if t == nil {
			continue
		}
		if out == nil {
			out = New(t.Columns...)
		} else if !sameColumns(out.Columns, t.Columns) {
			return nil, fmt.Errorf("table %d columns %v do not match %v", i, t.Columns, out.Columns)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	if out == nil {
		return nil, fmt.Errorf("no tables to concatenate")
	}
	return out, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Kind is the inferred storage kind of a column.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// KindOfValue classifies a single driver value. Integers beyond int64 are
// strings so they keep every digit.
func KindOfValue(v any) Kind {
	switch x := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInt
	case uint:
		if uint64(x) > math.MaxInt64 {
			return KindString
		}
		return KindInt
	case uint64:
		if x > math.MaxInt64 {
			return KindString
		}
		return KindInt
	case *big.Int:
		if !x.IsInt64() {
			return KindString
		}
		return KindInt
	case float32, float64, *big.Float:
		return KindFloat
	case []byte:
		return KindBytes
	case time.Time:
		return KindTime
	default:
		return KindString
	}
}

// ColumnKinds infers one kind per column. Mixed int/float columns widen to float,
// any other mix falls back to string, and all-null columns are strings.
func (t *Table) ColumnKinds() []Kind {
	kinds := make([]Kind, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			kinds[i] = widen(kinds[i], KindOfValue(v))
		}
	}
	for i, k := range kinds {
		if k == KindNull {
			kinds[i] = KindString
		}
	}
	return kinds
}

func widen(have, next Kind) Kind {
	switch {
	case next == KindNull || have == next:
		return have
	case have == KindNull:
		return next
	case (have == KindInt && next == KindFloat) || (have == KindFloat && next == KindInt):
		return KindFloat
	default:
		return KindString
	}
}
