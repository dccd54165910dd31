// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"sfkit/cli/internal/terminal"
	"sfkit/cli/internal/warehouse"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	downloadConn connFlags
	downloadFile string
	downloadOpts warehouse.DownloadOptions
)

// downloadCmd streams a query result to Parquet shards of --batch rows.
var downloadCmd = &cobra.Command{
	Use:   "download [SQL]",
	Short: "Download a query result to Parquet shards",
	Long: `Run a query once and write its rows to <raw-dir>/<name>__p_<round>.parquet,
at most --batch rows per file and at most --depth files. A round without
rows ends the download early. With --join the shards are concatenated, in
round order, into <full-dir>/<name>.parquet.

Defaults come from the [download] section of config.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := readSQL(args, downloadFile)
		if err != nil {
			return err
		}
		opts := downloadOpts
		opts.Query = query
		fillDownloadDefaults(cmd, &opts)

		ctx := cmd.Context()
		c, err := downloadConn.connect(ctx)
		if err != nil {
			return err
		}
		defer c.Disconnect()

		var bar *pterm.ProgressbarPrinter
		if terminal.IsInteractive() {
			cursor.Hide()
			defer cursor.Show()
			bar, _ = pterm.DefaultProgressbar.
				WithTotal(opts.Depth).
				WithTitle("Downloading " + opts.FileName).
				WithRemoveWhenDone(true).
				Start()
		}
		opts.Progress = func(round, depth, rows int) {
			if bar != nil {
				bar.UpdateTitle(pterm.Sprintf("Downloading %s (%d rows)", opts.FileName, rows))
				bar.Increment()
			}
		}

		res, err := c.Download(ctx, opts)
		if bar != nil {
			_, _ = bar.Stop()
		}
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Downloaded %d rows into %d shard(s) under %s", res.Rows, len(res.Shards), opts.RawDir)
		if res.Joined != "" {
			pterm.Success.Printfln("Joined file: %s", res.Joined)
		} else if opts.Join {
			pterm.Warning.Println("No shards to join")
		}
		return nil
	},
}

// fillDownloadDefaults applies config values for flags the user did not set.
func fillDownloadDefaults(cmd *cobra.Command, o *warehouse.DownloadOptions) {
	d := cfg.Download
	fs := cmd.Flags()
	if !fs.Changed("depth") && d.Depth > 0 {
		o.Depth = d.Depth
	}
	if !fs.Changed("batch") && d.Batch > 0 {
		o.Batch = d.Batch
	}
	if !fs.Changed("raw-dir") && d.RawDir != "" {
		o.RawDir = d.RawDir
	}
	if !fs.Changed("full-dir") && d.FullDir != "" {
		o.FullDir = d.FullDir
	}
	if !fs.Changed("name") && d.FileName != "" {
		o.FileName = d.FileName
	}
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadConn.register(downloadCmd)
	f := downloadCmd.Flags()
	f.StringVarP(&downloadFile, "file", "f", "", "Read the SQL from a file (- for stdin)")
	f.IntVar(&downloadOpts.Depth, "depth", warehouse.DefaultDepth, "Maximum number of shards")
	f.IntVar(&downloadOpts.Batch, "batch", warehouse.DefaultBatch, "Rows per shard")
	f.BoolVar(&downloadOpts.Join, "join", true, "Concatenate the shards into one file")
	f.StringVar(&downloadOpts.RawDir, "raw-dir", warehouse.DefaultRawDir, "Directory for shards")
	f.StringVar(&downloadOpts.FullDir, "full-dir", warehouse.DefaultFullDir, "Directory for the joined file")
	f.StringVar(&downloadOpts.FileName, "name", warehouse.DefaultFileName, "Base file name")
}
