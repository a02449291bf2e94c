// Command carecircle runs the healthcare content pipeline over scraped
// items and inspects the resulting store.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/canhta/CareCircle/internal/logger"
	"github.com/canhta/CareCircle/pkg/carecircle/config"
)

var version = "dev"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "carecircle",
		Short: "CareCircle - Vietnamese healthcare content pipeline",
		Long: `CareCircle cleans, scores, deduplicates, chunks and enriches scraped
Vietnamese healthcare articles for retrieval.

Environment variables override the config file, e.g.:
  CARECIRCLE_QUALITY_MIN_CONTENT_QUALITY   minimum quality score (default 0.5)
  CARECIRCLE_WORKERS                       parallel workers (default 1)
  CARECIRCLE_STORE_PATH                    SQLite store path
  CARECIRCLE_KAFKA_BROKERS                 comma-separated Kafka brokers`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to carecircle.yaml")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (json, console); overrides config")

	rootCmd.AddCommand(processCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(runsCmd(a))

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	a.cfg = cfg
	a.logger = logger.Setup(cfg.Logging.Level, cfg.Logging.Format, a.stderr)
	return nil
}
