package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacewx-tools/sepbatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sepbatch",
	Short: "Batch SEP event analysis and event-list aggregation",
	Long:  "Runs the per-event SEP analysis over a CSV manifest of time periods and experiments, then aggregates the resulting JSON documents into per-threshold event list CSVs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
