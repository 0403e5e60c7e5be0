package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"brd-tui/internal/web"

	"github.com/spf13/cobra"
)

func serveCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local JSON API",
		Long: `Serve the project store over HTTP with an SSE change feed and
Prometheus metrics at /metrics.

Examples:
  brd-tui serve
  brd-tui serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, g, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.Config().Server.Addr
			}
			s := web.New(a)
			url, err := s.Start(addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", url)

			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.Stop(shutdown)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8765)")
	return cmd
}
