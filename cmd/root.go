package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/insightloom-cli/internal/config"
	"github.com/KaramelBytes/insightloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogFormat string

	// Loaded configuration and the diagnostics logger (stderr).
	cfg    *cfgpkg.Global
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "insightloom",
	Short: "InsightLoom CLI: turn flat business records into KPI and segmentation reports",
	Long: `InsightLoom reads CSV, TSV, JSON and XLSX record files, maps their columns onto
value/date/category/name roles and produces KPIs, trends, Pareto classes, RFM
segments, correlations and anomalies as Markdown, JSON or YAML.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.insightloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		logger = logging.New(os.Stderr, slog.LevelInfo, logging.FormatText)
		return
	}
	cfg = c

	level, format := cfg.LogLevel, cfg.LogFormat
	if debug {
		level = "debug"
	}
	if flagLogFormat != "" {
		format = flagLogFormat
	}
	l, err := logging.FromStrings(os.Stderr, level, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	logger = l
}
