// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/table"
	"sfkit/cli/internal/warehouse"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	uploadConn   connFlags
	uploadTarget string
	uploadMode   string
)

// uploadCmd loads a Parquet file into a warehouse table.
var uploadCmd = &cobra.Command{
	Use:   "upload FILE.parquet",
	Short: "Upload a Parquet file into a table",
	Long: `Upload the rows of a Parquet file (for example a joined download) into
[DATABASE.][SCHEMA.]TABLE. Column names are upper-cased first.

--if-exists controls an existing destination:
  append      add the rows (default)
  fail        refuse to write
  replace     drop and recreate the table
  drop_table  drop the table, then append`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, schema, name, err := splitTarget(uploadTarget)
		if err != nil {
			return err
		}
		tb, err := table.ReadParquetFile(args[0])
		if err != nil {
			return sferrors.Wrap(sferrors.ShardIO, "error reading "+args[0], err)
		}

		ctx := cmd.Context()
		c, err := uploadConn.connect(ctx)
		if err != nil {
			return err
		}
		defer c.Disconnect()

		msg, err := c.Upload(ctx, tb, warehouse.UploadOptions{
			Database: db,
			Schema:   schema,
			Table:    name,
			IfExists: uploadMode,
		})
		if err != nil {
			return err
		}
		pterm.Success.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadConn.register(uploadCmd)
	f := uploadCmd.Flags()
	f.StringVarP(&uploadTarget, "table", "t", "", "Destination [DATABASE.][SCHEMA.]TABLE")
	f.StringVar(&uploadMode, "if-exists", warehouse.IfExistsAppend, "append, fail, replace or drop_table")
	_ = uploadCmd.MarkFlagRequired("table")
}
