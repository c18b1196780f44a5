package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/internal/server"
)

// serveCommand creates the serve command, which exposes import, export and
// graph rendering over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import/export API over HTTP",
		Long: `Serve the import/export API over HTTP.

Routes:
  GET  /healthz
  POST /api/v1/imports[?dry_run=true]
  GET  /api/v1/versions/{id}/export[?refresh=true]
  POST /api/v1/graphs[?format=svg|dot&kinds=...&detailed=true&references=true]

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.Options{
				MaxDocumentBytes: cfg.Server.MaxDocumentBytes,
				RequestTimeout:   cfg.Server.RequestTimeout.Duration,
			})
			c.Logger.Info("Serving", "addr", addr, "store", cfg.Store.Driver, "cache", cfg.Cache.Driver)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")

	return cmd
}
