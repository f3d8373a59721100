package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagopt/pkg/config"
	"github.com/matzehuels/dagopt/pkg/errors"
	"github.com/matzehuels/dagopt/pkg/export/mongo"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	uri      string // MongoDB connection string, overrides the config file
	database string // database name, overrides the config file
	runID    string // run identifier grouping the exported documents
	config   string // config file path
}

// newExportCmd creates the export command, which pushes a graph into MongoDB
// as upserted node and edge documents keyed by run ID.
func newExportCmd() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <graph.json>",
		Short: "Export a DAG to MongoDB",
		Long: `Export a DAG into MongoDB. Nodes and edges are upserted under a run ID,
so re-exporting the same run replaces its documents instead of duplicating them.

Examples:
  dagopt export graph.json --uri mongodb://localhost:27017
  dagopt export graph.json --run-id nightly-build`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runExport(c.Context(), &opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.uri, "uri", "", "MongoDB connection string (overrides config)")
	cmd.Flags().StringVar(&opts.database, "database", "", "database name (overrides config)")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "run identifier (random UUID if empty)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default dagopt.toml)")

	return cmd
}

func runExport(ctx context.Context, opts *exportOpts, input string) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	uri := cfg.Mongo.URI
	if opts.uri != "" {
		uri = opts.uri
	}
	if uri == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no MongoDB URI (set --uri or [mongo] uri in the config)")
	}
	database := cfg.Mongo.Database
	if opts.database != "" {
		database = opts.database
	}

	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	runID := opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %d nodes to %s", g.NodeCount(), database))
	spin.Start()

	exporter, err := mongo.New(ctx, mongo.Config{URI: uri, Database: database})
	if err != nil {
		spin.StopWithError("Connection failed")
		return err
	}
	defer func() {
		if err := exporter.Close(context.Background()); err != nil {
			logger.Warnf("Failed to close MongoDB connection: %v", err)
		}
	}()

	if err := exporter.ExportGraph(ctx, g, runID); err != nil {
		if spin.Cancelled() {
			spin.Stop()
			return ctx.Err()
		}
		spin.StopWithError("Export failed")
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("Exported %d nodes and %d edges", g.NodeCount(), g.EdgeCount()))
	printKeyValue("run_id", runID)
	return nil
}
