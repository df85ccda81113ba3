package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/pkg/server"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diff service",
		Long: `Run the HTTP and WebSocket diff service.

Endpoints:
  POST /v1/diff    diff two snapshots, JSON or binary frame reply
  GET  /v1/stream  WebSocket: send snapshot frames, receive patch frames
  GET  /healthz    liveness
  GET  /metrics    Prometheus metrics (metrics.enabled)

Examples:
  vdiff serve
  vdiff serve --addr 0.0.0.0:7420`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sc := server.ConfigFromFile(a.cfg, a.logger)
			if addr != "" {
				sc.Address = addr
			}
			return server.New(sc).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}
