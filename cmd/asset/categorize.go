package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/reginold/asset-management/internal/cli"
	"github.com/reginold/asset-management/internal/common"
	"github.com/reginold/asset-management/internal/model"
)

func categorizeCmd() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "categorize [merchant...]",
		Short: "Categorize merchant descriptions",
		Long: `Categorize one or more raw merchant descriptions, or a whole
statement file with --file. Merchants that cannot be settled are queued
for 'asset review'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			merchants := args
			if fromFile != "" {
				transactions, err := parseTransactionsCSV(fromFile)
				if err != nil {
					return err
				}
				for _, t := range transactions {
					merchants = append(merchants, t.Merchant)
				}
			}
			if len(merchants) == 0 {
				return fmt.Errorf("%w: pass merchant names or --file", common.ErrInvalidInput)
			}
			return runCategorize(cmd, merchants)
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "CSV statement file to categorize")
	return cmd
}

func runCategorize(cmd *cobra.Command, merchants []string) error {
	rules := openRuleStore()
	cache := openCategoryCache()
	unknown := openUnknownStore()
	eng := buildEngine(rules, cache)

	var bar *progressbar.ProgressBar
	if len(merchants) > 10 {
		bar = progressbar.NewOptions(len(merchants),
			progressbar.OptionSetDescription("Categorizing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	results, err := eng.CategorizeBatch(cmd.Context(), merchants, func(string, model.MatchResult) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if err != nil {
		return err
	}

	queued := 0
	for merchant, result := range results {
		if result.Category == model.CategoryUnknown && result.Method != model.MethodInvalidInput {
			unknown.Add(merchant)
			queued++
		}
	}
	if err := unknown.Save(); err != nil {
		return common.NewUserError("could not queue unsettled merchants for review", err)
	}

	common.LogInfo("Categorization complete", common.Fields{
		"merchants": len(results),
		"queued":    queued,
	})

	// Deterministic output order for the merchants as given
	seen := make(map[string]bool, len(results))
	for _, merchant := range merchants {
		if seen[merchant] {
			continue
		}
		seen[merchant] = true
		printResult(cmd, merchant, results[merchant])
	}

	if queued > 0 {
		cmd.Println(cli.FormatInfo(fmt.Sprintf("%d merchants queued for review. Run 'asset review' to settle them.", queued)))
	}
	return nil
}

func printResult(cmd *cobra.Command, merchant string, result model.MatchResult) {
	switch result.Method {
	case model.MethodInvalidInput:
		cmd.Println(cli.FormatWarning(fmt.Sprintf("%q is not a merchant name", merchant)))
	case model.MethodNoMatch, model.MethodLLMError:
		cmd.Println(cli.FormatWarning(fmt.Sprintf("%s → %s", merchant, result.Category)))
	default:
		detail := cli.SubtleStyle.Render(fmt.Sprintf("(%.2f, %s)", result.Confidence, result.Method))
		cmd.Println(cli.FormatSuccess(fmt.Sprintf("%s → %s %s", merchant, result.Category, detail)))
	}
}
