// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// MinFormat is the oldest nbformat major version accepted.
const MinFormat = 4

// Document is a notebook held as decoded JSON. Fields the runner does not
// understand are kept untouched so a save round-trips them.
type Document struct {
	fields map[string]any
}

// Parse decodes a notebook from JSON.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode notebook: document is not an object")
	}
	doc := &Document{fields: fields}
	if v := doc.Format(); v < MinFormat {
		return nil, fmt.Errorf("unsupported nbformat %d, need %d or newer", v, MinFormat)
	}
	return doc, nil
}

// Load reads the notebook at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Format returns the nbformat major version, or 0 when absent.
func (d *Document) Format() int {
	n, ok := d.fields["nbformat"].(json.Number)
	if !ok {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}

// Cells returns the raw cell objects.
func (d *Document) Cells() []map[string]any {
	raw, _ := d.fields["cells"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, c := range raw {
		if m, ok := c.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Marshal encodes the document the way Jupyter writes it: sorted keys, one space
// indentation, no HTML escaping and a trailing newline.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(d.fields); err != nil {
		return nil, fmt.Errorf("encode notebook: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the document to path, replacing any existing file.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
