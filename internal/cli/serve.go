package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moltiq/moltiq/internal/observability"
	"github.com/moltiq/moltiq/internal/tracing"
	"github.com/moltiq/moltiq/pkg/service"
)

var metricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prune scheduler and metrics endpoint",
	Long: `Runs moltiq in the foreground: starts the scheduled prune job
(when prune.days is set) and serves Prometheus metrics on /metrics
until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := tracing.Init(version, a.cfg.Tracing.SampleRatio); err != nil {
			return err
		}

		var scheduler *service.PruneScheduler
		if a.cfg.Prune.Days > 0 && a.cfg.Prune.Schedule != "" {
			scheduler, err = service.NewPruneScheduler(
				a.service, a.cfg.Prune.Schedule, a.cfg.Prune.Days, a.logger)
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()
		} else {
			a.logger.Info().Msg("Scheduled pruning disabled")
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.MetricsHandler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info().Str("addr", metricsAddr).Msg("Metrics server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			a.logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
		return tracing.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "127.0.0.1:9090", "metrics listen address")

	rootCmd.AddCommand(serveCmd)
}
