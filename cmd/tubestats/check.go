package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkCmd loads and validates the source without serving it.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the channel table",
	Long:  "Load the configured source, validate every row and print the row count. Exits 1 when the source cannot be loaded.",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
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

	table, err := src.Load(cmd.Context())
	if err != nil {
		return exitError(ExitFailure, "check failed: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d channels in %s\n", table.Len(), src.Info())
	return nil
}
