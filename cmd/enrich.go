package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/linkfind/internal/organizer"
)

var (
	enrichLimit int
	enrichAll   bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Write descriptions and tags for links that have none",
	Long:  "Summarise links saved without a description using the configured LLM. Requires enrich.enabled in config.yaml.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		limit := enrichLimit
		if enrichAll {
			limit = 0 // 0 means process all
		}

		report, err := a.organizer.Enrich(context.Background(), a.cfg.User, limit, func(done, total int) {
			printProgress(done, total, "Enriching")
		})
		if errors.Is(err, organizer.ErrEnrichDisabled) {
			return fmt.Errorf("%w: set enrich.enabled and llm.provider in %s/config.yaml", err, a.cfg.DataDir)
		}
		if err != nil {
			return err
		}

		if report.Processed == 0 {
			fmt.Println("No links found needing a description.")
			return nil
		}
		fmt.Println()
		fmt.Printf("Done! Updated %d of %d link(s), %d failed\n", report.Updated, report.Processed, report.Failed)
		return nil
	},
}

func printProgress(current, total int, prefix string) {
	pct := float64(current) / float64(total) * 100
	barWidth := 30
	filled := int(float64(barWidth) * float64(current) / float64(total))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Printf("\r%s [%s] %d/%d (%.0f%%)", prefix, bar, current, total, pct)
}

func init() {
	enrichCmd.Flags().IntVarP(&enrichLimit, "limit", "l", 10, "Number of links to process")
	enrichCmd.Flags().BoolVarP(&enrichAll, "all", "a", false, "Process all links (overrides --limit)")
	rootCmd.AddCommand(enrichCmd)
}
