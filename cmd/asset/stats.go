package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reginold/asset-management/internal/cli"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show rule, cache, and review queue statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := openRuleStore()
			cache := openCategoryCache()
			unknown := openUnknownStore()
			eng := buildEngine(rules, cache)

			cmd.Println(cli.TitleStyle.Render(cli.ChartIcon + " Categorization stats"))
			cmd.Println(eng.Stats().String())
			cmd.Printf("Cached decisions:  %d\n", eng.CacheSize())
			cmd.Printf("Awaiting review:   %d\n", unknown.PendingCount())

			if history, ok := statsSource(); ok {
				defer func() { _ = history.Close() }()
				count, err := history.Count(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Transactions:      %d\n", count)
			}

			if unknown.PendingCount() > 0 {
				cmd.Println(cli.FormatInfo(fmt.Sprintf("Run 'asset review' to settle %d merchants.", unknown.PendingCount())))
			}
			return nil
		},
	}
}
