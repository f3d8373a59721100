package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagopt/pkg/api"
	"github.com/matzehuels/dagopt/pkg/config"
	"github.com/matzehuels/dagopt/pkg/pipeline"
)

// shutdownTimeout bounds the drain of in-flight requests on exit.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr   string // listen address, overrides the config file
	config string // config file path
}

// newServeCmd creates the serve command, which exposes the optimization and
// analysis engines over HTTP until interrupted.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the JSON API for validation, optimization, analysis, and snapshots.

Examples:
  dagopt serve                       # Listen on the configured address
  dagopt serve --addr :9000          # Override the listen address
  dagopt serve -c prod.toml          # Use an explicit config file`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runServe(c.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default dagopt.toml)")

	return cmd
}

func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(st, logger)
	defer runner.Close()

	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(runner, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s (store backend %s)", addr, cfg.Store.Backend)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
