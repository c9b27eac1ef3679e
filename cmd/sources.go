package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cardninja/cardsync/internal/store"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List and validate the card source catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := store.LoadCatalog(cfg.SourcesPath())
		if err != nil {
			return err
		}

		seen := make(map[string]bool, len(sources))
		problems := 0
		for i, src := range sources {
			var issues []string
			if src.ID == "" {
				issues = append(issues, "missing id")
			} else if seen[src.ID] {
				issues = append(issues, "duplicate id")
			}
			seen[src.ID] = true
			if src.Name == "" {
				issues = append(issues, "missing name")
			}
			if src.Issuer == "" {
				issues = append(issues, "missing issuer")
			}
			if src.URL == "" {
				issues = append(issues, "missing url")
			}

			if len(issues) > 0 {
				problems++
				fmt.Printf("[%d] %s %s: INVALID (%v)\n", i+1, src.Issuer, src.Name, issues)
				continue
			}
			fmt.Printf("[%d] %s %s -> %s\n", i+1, src.Issuer, src.Name, src.URL)
		}

		fmt.Printf("\n%d sources, %d invalid\n", len(sources), problems)
		if problems > 0 {
			return eris.Errorf("catalog has %d invalid entries", problems)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
