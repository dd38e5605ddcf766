package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voyagen/tubestats/internal/engine"
	"github.com/voyagen/tubestats/internal/models"
	"github.com/voyagen/tubestats/internal/report"
	"github.com/voyagen/tubestats/internal/service"
	"github.com/voyagen/tubestats/internal/store"
)

// Report-specific flag values.
var (
	reportCategories []string
	reportCountries  []string
	reportTop        int
	reportColumns    string
	reportFormat     string
)

// reportCmd prints a one-shot dashboard.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a dashboard for a selection",
	Long: `Load the channel table once and print every view for the selection:
summary metrics, category distribution, top channels by subscribers, average
monthly earnings per category and the channel table.

Without --category or --country every value is selected. Passing the flag
with an empty value (--category "") selects nothing.`,
	Example: `  tubestats report --category Music --category Gaming --top 10
  tubestats report --country India --format json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringArrayVar(&reportCategories, "category", nil, "category to include (repeatable)")
	reportCmd.Flags().StringArrayVar(&reportCountries, "country", nil, "country to include (repeatable)")
	reportCmd.Flags().IntVarP(&reportTop, "top", "n", 0, "number of top channels (default from TOP_N or 5)")
	reportCmd.Flags().StringVar(&reportColumns, "columns", "", "comma-separated columns of the channel table")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", report.FormatText, "output format: text or json")
}

func runReport(cmd *cobra.Command, _ []string) error {
	if reportFormat != report.FormatText && reportFormat != report.FormatJSON {
		return exitError(ExitInvalidArgs, "report: unknown format %q (want text or json)", reportFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return exitError(ExitInvalidArgs, "config: %v", err)
	}
	log, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	q := service.Query{
		Categories: flagSet(cmd, "category", reportCategories),
		Countries:  flagSet(cmd, "country", reportCountries),
		TopN:       reportTop,
		Columns:    splitColumns(reportColumns),
	}
	tables := store.NewTableCache(src, store.WithLogger(log), store.WithLoadTimeout(cfg.Timeout))
	d, err := service.NewDashboardService(tables, cfg.TopN).Build(cmd.Context(), q)
	switch {
	case errors.Is(err, service.ErrInvalidQuery), errors.Is(err, engine.ErrUnknownColumn):
		return exitError(ExitInvalidArgs, "report: %v", err)
	case err != nil:
		return exitError(ExitFailure, "report: %v", err)
	}
	return report.Render(cmd.OutOrStdout(), d, reportFormat)
}

// flagSet is nil when the flag was not given, selecting every value.
func flagSet(cmd *cobra.Command, name string, values []string) models.Set {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			names = append(names, v)
		}
	}
	return models.NewSet(names...)
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
