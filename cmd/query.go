// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/table"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	queryConn   connFlags
	queryFile   string
	queryTemp   string
	queryThen   string
	queryFormat string
	queryLimit  int
	queryOut    string
)

// queryCmd runs one SQL statement on a fresh session and prints the result.
var queryCmd = &cobra.Command{
	Use:   "query [SQL]",
	Short: "Run a query and print the result",
	Long: `Run a SQL query and print the full result set.

With --temp DB.SCHEMA.NAME the query instead populates a temporary table of
that name; the table lives until the session ends, so combine it with a
follow-up statement in the same invocation via --then.

Examples:
  sfkit query --user jdoe@acme.com "SELECT CURRENT_DATE"
  sfkit query --dsn sqlite://local.db --format json "SELECT * FROM runs"
  sfkit query --dsn sqlite://local.db --out runs.parquet "SELECT * FROM runs"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlText, err := readSQL(args, queryFile)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		c, err := queryConn.connect(ctx)
		if err != nil {
			return err
		}
		defer c.Disconnect()

		if queryTemp != "" {
			db, schema, name, err := splitTarget(queryTemp)
			if err != nil {
				return err
			}
			if err := c.CreateTempTable(ctx, db, schema, name, sqlText); err != nil {
				return err
			}
			pterm.Success.Printfln("Temporary table %s created", queryTemp)
			if queryThen == "" {
				return nil
			}
			sqlText = queryThen
		}

		res, err := c.ExecuteQuery(ctx, sqlText)
		if err != nil {
			return err
		}
		if queryOut != "" {
			if err := table.WriteParquetFile(queryOut, res); err != nil {
				return sferrors.Wrap(sferrors.ShardIO, "error writing "+queryOut, err)
			}
			pterm.Success.Printfln("Wrote %d rows to %s", res.NumRows(), queryOut)
			return nil
		}
		switch queryFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		case "table", "":
			fmt.Println(renderTable(res, queryLimit))
			pterm.Info.Printfln("%d rows", res.NumRows())
			return nil
		}
		return sferrors.New(sferrors.InvalidArgument, fmt.Sprintf("unknown --format %q (use table or json)", queryFormat))
	},
}

// readSQL takes the statement from the argument or from a file ("-" is stdin).
func readSQL(args []string, file string) (string, error) {
	if len(args) == 1 && file != "" {
		return "", sferrors.New(sferrors.InvalidArgument, "pass the SQL either as an argument or with --file, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if file == "" {
		return "", sferrors.New(sferrors.InvalidArgument, "a SQL statement is required")
	}
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", sferrors.Wrap(sferrors.InvalidArgument, "error reading "+file, err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", sferrors.New(sferrors.InvalidArgument, file+" is empty")
	}
	return s, nil
}

// splitTarget parses [DATABASE.][SCHEMA.]TABLE.
func splitTarget(s string) (db, schema, name string, err error) {
	parts := strings.Split(s, ".")
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		schema, name = parts[0], parts[1]
	case 3:
		db, schema, name = parts[0], parts[1], parts[2]
	default:
		return "", "", "", sferrors.New(sferrors.InvalidArgument, fmt.Sprintf("invalid table %q, want [DATABASE.][SCHEMA.]TABLE", s))
	}
	if name == "" {
		return "", "", "", sferrors.New(sferrors.InvalidArgument, fmt.Sprintf("invalid table %q, table name is empty", s))
	}
	return db, schema, name, nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryConn.register(queryCmd)
	f := queryCmd.Flags()
	f.StringVarP(&queryFile, "file", "f", "", "Read the SQL from a file (- for stdin)")
	f.StringVar(&queryTemp, "temp", "", "Create temporary table [DATABASE.][SCHEMA.]NAME from the query instead of printing it")
	f.StringVar(&queryThen, "then", "", "With --temp, query to run afterwards in the same session")
	f.StringVar(&queryFormat, "format", "table", "Output format: table or json")
	f.IntVar(&queryLimit, "limit", 200, "Maximum rows to print in table format (0 for all)")
	f.StringVarP(&queryOut, "out", "o", "", "Write the result to a Parquet file instead of printing it")
}
