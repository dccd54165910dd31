// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package shard names, writes and joins the per-round result files produced by a
// paginated warehouse download.
//
// Shards live at <raw_dir>/<name>__p_<round>.parquet and the joined artifact at
// <full_dir>/<name>.parquet. Joining walks rounds 0..depth-1 in order and silently
// skips rounds whose shard is missing.
package shard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sfkit/cli/internal/table"
)

// Extension is the file extension used for shards and joined artifacts.
const Extension = "parquet"

// Layout describes where shards and the joined artifact are stored.
type Layout struct {
	RawDir   string
	FullDir  string
	FileName string
}

// Ensure creates the raw and full directories when absent.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.RawDir, l.FullDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ShardPath returns the path of the shard for the given round.
func (l Layout) ShardPath(round int) string {
	return filepath.Join(l.RawDir, fmt.Sprintf("%s__p_%d.%s", l.FileName, round, Extension))
}

// JoinedPath returns the path of the joined artifact.
func (l Layout) JoinedPath() string {
	return filepath.Join(l.FullDir, l.FileName+"."+Extension)
}

// Write stores one round's rows as a shard and returns its path.
func (l Layout) Write(round int, t *table.Table) (string, error) {
	p := l.ShardPath(round)
	if err := table.WriteParquetFile(p, t); err != nil {
		return "", fmt.Errorf("write shard %s: %w", p, err)
	}
	return p, nil
}

// CountRaw returns the number of entries in the raw directory.
func (l Layout) CountRaw() (int, error) {
	entries, err := os.ReadDir(l.RawDir)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Join concatenates shards 0..depth-1 that exist, in round order, and writes the
// joined artifact. It returns the joined table and the number of shards used;
// when no shard exists nothing is written and the table is nil.
func (l Layout) Join(depth int) (*table.Table, int, error) {
	var parts []*table.Table
	for round := 0; round < depth; round++ {
		p := l.ShardPath(round)
		t, err := table.ReadParquetFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, 0, fmt.Errorf("read shard %s: %w", p, err)
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return nil, 0, nil
	}
	joined, err := table.Concat(parts...)
	if err != nil {
		return nil, 0, err
	}
	if err := table.WriteParquetFile(l.JoinedPath(), joined); err != nil {
		return nil, 0, fmt.Errorf("write joined file: %w", err)
	}
	return joined, len(parts), nil
}
