// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"sort"
	"strings"
)

// SQLiteResolver handles sqlite:// paths and file: URIs.
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	info := &DSNInfo{Type: DBTypeSQLite, Params: map[string]string{}, Original: dsn}
	lower := strings.ToLower(dsn)
	var path, query string
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		path, query, _ = strings.Cut(dsn[len("sqlite://"):], "?")
	case strings.HasPrefix(lower, "file:"):
		path, query, _ = strings.Cut(dsn[len("file:"):], "?")
	default:
		return nil, NewParseError(dsn, "missing or invalid scheme", "use sqlite://path or file:path")
	}
	if strings.TrimSpace(path) == "" {
		return nil, NewParseError(dsn, "missing database file", "use sqlite://path/to/file.db or sqlite://:memory:")
	}
	info.Host = path
	for _, kv := range strings.Split(query, "&") {
		if k, v, ok := strings.Cut(kv, "="); ok {
			info.Params[k] = v
		}
	}
	return info, nil
}

// Normalize renders a file: URI, or ":memory:" for in-memory databases.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	if info.Host == ":memory:" && len(info.Params) == 0 {
		return ":memory:", nil
	}
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(info.Host)
	keys := make([]string, 0, len(info.Params))
	for k := range info.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(k + "=" + info.Params[k])
	}
	return b.String(), nil
}

func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
