package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardninja/cardsync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cardsync",
	Short: "CardNinja card-data updater",
	Long:  "Crawls issuer card pages, extracts structured reward data via an LLM provider, and maintains the card dataset with per-card checkpointing.",
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
