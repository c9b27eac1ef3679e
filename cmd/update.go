package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardninja/cardsync/internal/config"
	"github.com/cardninja/cardsync/internal/extract"
	"github.com/cardninja/cardsync/internal/fetch"
	"github.com/cardninja/cardsync/internal/pipeline"
	"github.com/cardninja/cardsync/pkg/llm"
)

var updateForce bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the card dataset from issuer pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		pool := cfg.CredentialPool()
		zap.L().Info("update: provider configured",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
			zap.Int("credentials", len(pool)),
		)
		for i, key := range pool {
			if key != "" {
				zap.L().Debug("update: credential",
					zap.Int("index", i+1),
					zap.String("key", config.MaskKey(key)),
				)
			}
		}

		completer, err := llm.New(llm.Config{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
			Timeout:  cfg.LLMTimeout(),
		})
		if err != nil {
			return eris.Wrap(err, "init completion client")
		}

		fetcher := fetch.NewFetcher(cfg.ScrapeTimeout(), cfg.Scrape.UserAgent)

		u := pipeline.NewUpdater(pipeline.Options{
			Fetcher:     fetcher,
			Assembler:   pipeline.NewAssembler(fetcher),
			Extractor:   extract.NewClient(completer, pool),
			SourcesPath: cfg.SourcesPath(),
			CardsPath:   cfg.CardsPath(),
			RunLogPath:  cfg.RunLogPath(),
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			CardDelay:   cfg.CardDelay(),
			Force:       updateForce,
		})

		summary, err := u.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "update run")
		}

		// Print summary JSON to stdout.
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "update cards even if already refreshed today")
	rootCmd.AddCommand(updateCmd)
}
