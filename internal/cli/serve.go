package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rahulmohankumar24/finch-demo/internal/api"
	"github.com/rahulmohankumar24/finch-demo/internal/events"
	"github.com/rahulmohankumar24/finch-demo/internal/service"
)

// newServeCmd creates the serve command for the API server
func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the finch API server.

The API server provides JSON endpoints for matters, tasks and clients and
a WebSocket at /api/ws that streams matter events.

Example:
  finch serve              # Listen on server.host:server.port (127.0.0.1:8080)
  finch serve --port 3000  # Listen on a custom port`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctx, cancel := SetupSignalHandler(cmd.Context(), out)
			defer cancel()

			svc, cfg, err := openService(ctx, service.WithPublisher(events.NewMemoryPublisher()))
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Surface storage problems before accepting requests.
			if err := svc.Load(ctx); err != nil {
				return err
			}

			server := api.New(api.Config{
				Addr:    cfg.Server.Addr(),
				Logger:  cfg.Log.NewLogger(os.Stderr),
				Service: svc,
			})

			fmt.Fprintf(out, "Listening on http://%s\n", server.Addr())
			fmt.Fprintln(out, "Press Ctrl+C to stop")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.StartContext(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				if ctx.Err() == nil {
					return nil
				}
				return context.Cause(ctx)
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host to listen on (default from server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from server.port)")

	return cmd
}
