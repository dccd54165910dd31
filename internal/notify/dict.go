// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package notify

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one key of a dict message. When Children is non-nil the entry is
// rendered as a nested block and Value is ignored.
type Entry struct {
	Key      string
	Value    any
	Children []Entry
}

// Dict is an ordered dict message.
type Dict []Entry

// Render formats the message as bold keys followed by either the value or one
// tab-indented, italic sub-key line per child, with a blank line after each entry.
func (d Dict) Render() string {
	var b strings.Builder
	for _, e := range d {
		b.WriteString("*" + e.Key + "*\n")
		if e.Children != nil {
			for _, c := range e.Children {
				fmt.Fprintf(&b, "\t_%s_: %s\n", c.Key, formatValue(c.Value))
			}
		} else {
			b.WriteString(formatValue(e.Value) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// DictFromMap builds a Dict from m with keys sorted. Values of type
// map[string]any become nested entries.
func DictFromMap(m map[string]any) Dict {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(Dict, 0, len(keys))
	for _, k := range keys {
		e := Entry{Key: k, Value: m[k]}
		if sub, ok := m[k].(map[string]any); ok {
			e.Value = nil
			e.Children = []Entry(DictFromMap(sub))
		}
		d = append(d, e)
	}
	return d
}

// DictFromYAML parses a YAML mapping into a Dict, keeping document order. Nested
// mappings one level down become child entries.
func DictFromYAML(data []byte) (Dict, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Dict{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("message must be a mapping, got %s", nodeKind(root))
	}
	return entriesFromMapping(root, true)
}

func entriesFromMapping(n *yaml.Node, nest bool) (Dict, error) {
	d := make(Dict, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		e := Entry{Key: key.Value}
		if nest && val.Kind == yaml.MappingNode {
			children, err := entriesFromMapping(val, false)
			if err != nil {
				return nil, err
			}
			e.Children = []Entry(children)
		} else {
			var v any
			if err := val.Decode(&v); err != nil {
				return nil, fmt.Errorf("decode %q: %w", key.Value, err)
			}
			e.Value = v
		}
		d = append(d, e)
	}
	return d, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
