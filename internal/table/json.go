// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package table

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MarshalJSON renders the table as {columns, rows} with byte values converted to
// printable strings.
func (t Table) MarshalJSON() ([]byte, error) {
	type payload struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	p := payload{Columns: t.Columns, Rows: make([][]any, len(t.Rows))}
	if p.Columns == nil {
		p.Columns = []string{}
	}
	for i, row := range t.Rows {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = jsonValue(v)
		}
		p.Rows[i] = out
	}
	return json.Marshal(p)
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case []byte:
		if id, err := uuid.FromBytes(x); err == nil {
			return id.String()
		}
		return fmt.Sprintf("\\x%x", x)
	case [16]byte:
		return uuid.UUID(x).String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return v
	}
}
