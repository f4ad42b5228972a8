package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	tserrors "github.com/abatilo/taskstats/internal/errors"
	"github.com/abatilo/taskstats/internal/metrics"
	"github.com/abatilo/taskstats/internal/server"
)

// serveCmd implements 'taskstats serve'.
func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		Run: func(_ *cobra.Command, _ []string) {
			if addr == "" {
				addr = cfg.Addr
			}

			store, err := getStore()
			if err != nil {
				printError(err)
			}
			if !store.IsInitialized() {
				printError(tserrors.NotInitializedError{})
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg, m := metrics.NewRegistry()
			srv := server.New(store, m, reg, logger, server.Config{
				Address:    addr,
				HoursWeeks: cfg.HoursWeeks,
			})
			if err = srv.Run(ctx); err != nil {
				stop()
				printError(err)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
