// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package warehouse

import (
	"context"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/shard"
	"sfkit/cli/internal/table"

	"go.uber.org/zap"
)

// Download defaults.
const (
	DefaultDepth    = 10
	DefaultBatch    = 1_000_000
	DefaultRawDir   = "data/raw"
	DefaultFullDir  = "data/"
	DefaultFileName = "data"
)

// ProgressFunc observes a download after every round.
type ProgressFunc func(round, depth, rows int)

// DownloadOptions controls a paginated download.
type DownloadOptions struct {
	Query    string
	Depth    int // maximum number of rounds
	Batch    int // rows per round
	Join     bool
	RawDir   string
	FullDir  string
	FileName string
	Progress ProgressFunc
}

func (o *DownloadOptions) defaults() {
	if o.Depth <= 0 {
		o.Depth = DefaultDepth
	}
	if o.Batch <= 0 {
		o.Batch = DefaultBatch
	}
	if o.RawDir == "" {
		o.RawDir = DefaultRawDir
	}
	if o.FullDir == "" {
		o.FullDir = DefaultFullDir
	}
	if o.FileName == "" {
		o.FileName = DefaultFileName
	}
}

// DownloadResult describes the files a download produced.
type DownloadResult struct {
	Shards []string
	Rows   int
	Joined string // empty unless a joined file was written
}

// Download runs query once and writes up to Depth shards of Batch rows each. A
// round without rows ends the loop. With Join set, the existing shards for rounds
// 0..Depth-1 are concatenated into one file.
func (c *Connector) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	opts.defaults()
	conn, err := c.session()
	if err != nil {
		return nil, err
	}
	layout := shard.Layout{RawDir: opts.RawDir, FullDir: opts.FullDir, FileName: opts.FileName}
	if err := layout.Ensure(); err != nil {
		return nil, c.fail(sferrors.ShardIO, "error creating download directories", err)
	}

	c.log.Info("data loading", zap.String("name", opts.FileName), zap.Int("depth", opts.Depth), zap.Int("batch", opts.Batch))
	rows, err := conn.QueryContext(c.queryContext(ctx), opts.Query)
	if err != nil {
		return nil, c.fail(sferrors.StatementFailed, "error downloading data from query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, c.fail(sferrors.StatementFailed, "error reading result columns", err)
	}

	res := &DownloadResult{}
	for round := 0; round < opts.Depth; round++ {
		batch := table.New(cols...)
		for batch.NumRows() < opts.Batch && rows.Next() {
			vals, err := scanRow(rows, len(cols))
			if err != nil {
				return res, c.fail(sferrors.StatementFailed, "error fetching rows", err)
			}
			batch.Rows = append(batch.Rows, vals)
		}
		if err := rows.Err(); err != nil {
			return res, c.fail(sferrors.StatementFailed, "error fetching rows", err)
		}
		if batch.NumRows() == 0 {
			break
		}
		p, err := layout.Write(round, batch)
		if err != nil {
			return res, c.fail(sferrors.ShardIO, "error writing shard", err)
		}
		res.Shards = append(res.Shards, p)
		res.Rows += batch.NumRows()
		if opts.Progress != nil {
			opts.Progress(round+1, opts.Depth, res.Rows)
		}
	}

	if n, err := layout.CountRaw(); err == nil {
		c.log.Info("data loaded", zap.String("name", opts.FileName), zap.String("dir", opts.RawDir), zap.Int("files", n))
	}

	if !opts.Join {
		return res, nil
	}
	joined, used, err := layout.Join(opts.Depth)
	if err != nil {
		return res, c.fail(sferrors.ShardIO, "error joining shards", err)
	}
	if joined == nil {
		c.log.Warn("no shards to join", zap.String("dir", opts.RawDir))
		return res, nil
	}
	res.Joined = layout.JoinedPath()
	c.log.Info("shards joined", zap.String("file", res.Joined), zap.Int("shards", used), zap.Int("rows", joined.NumRows()))
	return res, nil
}
