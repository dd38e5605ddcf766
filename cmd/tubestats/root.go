package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/voyagen/tubestats/internal/config"
	"github.com/voyagen/tubestats/internal/logger"
)

// Global flag values.
var (
	configPath string
	dataPath   string
	verbose    bool
	quiet      bool
	noColor    bool
)

// rootCmd is the base command for tubestats.
var rootCmd = &cobra.Command{
	Use:   "tubestats",
	Short: "Filter and aggregate YouTube channel statistics",
	Long: `tubestats loads a table of YouTube channel statistics from a CSV file,
URL or Postgres and answers filtered questions about it: summary metrics,
category distribution, top channels and average earnings per category.
Serve it over HTTP or print a one-shot report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .toml); else environment")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "CSV file or http(s) URL; overrides the configured source")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file or the environment and applies the
// global flags on top. Precedence: defaults, file, environment, flags.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "config: %v", err)
	}
	if dataPath != "" {
		cfg.DataPath = dataPath
		cfg.DatabaseURL = ""
	}
	return cfg, nil
}

// setupLogger installs the process logger for cmd, writing to its stderr.
func setupLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	log, err := logger.Setup(logger.Options{
		Writer:      cmd.ErrOrStderr(),
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Verbose:     verbose,
		Quiet:       quiet,
	})
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "logger: %v", err)
	}
	return log, nil
}
