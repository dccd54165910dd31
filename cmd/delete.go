// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"sfkit/cli/internal/warehouse"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	deleteConn   connFlags
	deleteTarget string
	deleteWhere  string
	deleteAll    bool
)

// deleteCmd removes rows from a table.
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete rows from a table",
	Long: `Delete the rows of [DATABASE.][SCHEMA.]TABLE matching --where, or every row
with --all. Clearing a whole table asks for confirmation on a terminal;
pass --yes to confirm in scripts. Without a terminal and without --yes,
--all fails instead of deleting.

Example:
  sfkit delete --tech-login svc_etl -t ANALYTICS.ML.PREDICTIONS --where "PREDICTION_AT = '1990-05-15'"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, schema, name, err := splitTarget(deleteTarget)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		c, err := deleteConn.connect(ctx)
		if err != nil {
			return err
		}
		defer c.Disconnect()

		res, err := c.Delete(ctx, warehouse.DeleteOptions{
			Database:  db,
			Schema:    schema,
			Table:     name,
			Condition: deleteWhere,
			All:       deleteAll,
		})
		if err != nil {
			return err
		}
		switch {
		case res.Skipped:
			pterm.Warning.Printfln("Nothing deleted from %s", deleteTarget)
		case res.RowsAffected >= 0:
			pterm.Success.Printfln("Deleted %d rows from %s", res.RowsAffected, deleteTarget)
		default:
			pterm.Success.Printfln("Deleted rows from %s", deleteTarget)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteConn.register(deleteCmd)
	f := deleteCmd.Flags()
	f.StringVarP(&deleteTarget, "table", "t", "", "Target [DATABASE.][SCHEMA.]TABLE")
	f.StringVar(&deleteWhere, "where", "", "Row filter, the SQL after WHERE")
	f.BoolVar(&deleteAll, "all", false, "Delete every row")
	f.BoolVarP(&deleteConn.yes, "yes", "y", false, "Confirm --all without prompting")
	deleteCmd.MarkFlagsMutuallyExclusive("where", "all")
	_ = deleteCmd.MarkFlagRequired("table")
}
