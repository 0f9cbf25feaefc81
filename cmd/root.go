package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/config"
	"github.com/acuity-research/patentlink/internal/normalize"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "patentlink",
	Short: "Patent assignee to acquiror linking pipeline",
	Long:  "Normalizes company names, matches patent assignees to an acquiror roster in volume tiers, merges reviewed matches into a master dictionary, aggregates patent statistics, and cross-references acquirors with Compustat.",
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

// newCleaner builds the shared normalizer, extended by the configured
// rules file when one is set.
func newCleaner() (*normalize.Normalizer, error) {
	return normalize.FromConfig(cfg.Normalize.RulesFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
