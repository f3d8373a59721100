package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2025-12-20T14:32:01Z")
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the dagopt CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (optimize,
// analyze, render, random, serve, export, snapshots), configures logging
// based on the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext. The given ctx bounds every command; cancelling it (for
// example on SIGINT) aborts the running command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd assembles the dagopt command tree.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "dagopt",
		Short:        "dagopt optimizes and analyzes directed acyclic graphs",
		Long:         `dagopt is a CLI tool for optimizing dependency DAGs: it removes transitively implied edges, merges structurally equivalent nodes, and reports scheduling and structure metrics for the before/after pair.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("dagopt %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newOptimizeCmd())
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newRandomCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newSnapshotsCmd())

	return root
}
