package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/insightloom-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics engine over HTTP",
	Long: `Serve exposes the analysis engine as a JSON API:

  GET  /health
  GET  /metrics           Prometheus metrics
  GET  /v1/presets
  POST /v1/analyze        full report
  POST /v1/{view}         kpis, timeseries, top, pareto, rfm, correlations, anomalies

Request bodies carry the records plus the same mapping and range options as the
analyze command. Access logs go to stdout, diagnostics to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" && cfg != nil {
			addr = cfg.ServeAddr
		}
		if addr == "" {
			addr = ":8080"
		}
		d := server.Defaults{}
		if cfg != nil {
			d = server.Defaults{
				Preset:            cfg.DefaultPreset,
				TopN:              cfg.TopN,
				CorrelationFields: cfg.CorrelationFields,
				CustomerField:     cfg.CustomerField,
			}
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(d, logger)
		fmt.Printf("✓ Listening on %s\n", addr)
		return srv.ListenAndServe(ctx, addr, srv.Handler(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
