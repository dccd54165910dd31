// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"time"

	"sfkit/cli/internal/notebook"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	notebookWorkDir string
	notebookJupyter string
)

var notebookCmd = &cobra.Command{
	Use:   "notebook",
	Short: "Work with Jupyter notebooks",
}

// notebookRunCmd executes a notebook and overwrites it with the results.
var notebookRunCmd = &cobra.Command{
	Use:   "run PATH.ipynb",
	Short: "Execute a notebook in place",
	Long: `Execute every cell of the notebook with jupyter nbconvert, without a cell
timeout, and overwrite the file with the executed version. The kernel runs in
--workdir. When execution fails the file is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		stop := startInlineSpinner(os.Stdout, "executing "+path, spinnerFrames, 100*time.Millisecond)
		err := notebook.Run(cmd.Context(), path,
			notebook.WithExecutor(notebook.NbconvertExecutor{Command: notebookJupyter}),
			notebook.WithWorkDir(notebookWorkDir),
			notebook.WithLogger(logger),
		)
		stop()
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Executed %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notebookCmd)
	notebookCmd.AddCommand(notebookRunCmd)
	f := notebookRunCmd.Flags()
	f.StringVar(&notebookWorkDir, "workdir", ".", "Working directory for the kernel")
	f.StringVar(&notebookJupyter, "jupyter", "jupyter", "jupyter executable")
}
