// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the sfkit command-line interface: warehouse queries,
// paginated downloads, uploads and deletes, webhook notifications, notebook
// runs and keychain-backed credential management, built on Cobra with a pterm
// terminal UI.
package cmd

import (
	"fmt"
	"os"

	"sfkit/cli/internal/config"
	sferrors "sfkit/cli/internal/errors"
	"sfkit/cli/internal/logging"
	"sfkit/cli/internal/xdg"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	showVersion bool
	verbose     bool
	configPath  string

	cfg    config.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sfkit",
	Short: "Warehouse, notification and notebook toolkit for data pipelines",
	Long: `sfkit wraps one data-warehouse session (Snowflake, PostgreSQL or SQLite) and
exposes bulk operations on it: ad-hoc queries, temporary tables, paginated
downloads to Parquet shards, uploads and deletes. It also posts messages to
chat webhooks and executes Jupyter notebooks in place.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		stateDir, err := xdg.StateDir()
		if err != nil {
			stateDir = ""
		}
		logger, err = logging.NewLogger(verbose, stateDir)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		logger.Debug("command started", zap.String("command", cmd.CommandPath()), zap.String("version", Version))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits non-zero on failure. Typed
// operation errors are rendered with a per-kind explanation.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if sferrors.KindOf(err) != "" {
			logging.PresentOperationError(err)
		} else {
			fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		}
		_ = logger.Sync()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default $XDG_CONFIG_HOME/sfkit/config.toml)")
}
