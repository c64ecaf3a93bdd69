package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/reginold/asset-management/internal/cli"
	"github.com/reginold/asset-management/internal/review"
)

func reviewCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review merchants that could not be categorized",
		Long: `Walk through every merchant waiting for a verdict, largest spending
first. Similar merchants are grouped so one answer can settle all of
them. Every decision is saved immediately; quitting mid-session loses
nothing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions := openSessionStore()
			if reset {
				if err := sessions.Reset(); err != nil {
					return err
				}
				cmd.Println(cli.FormatSuccess("Session checkpoint cleared."))
				return nil
			}

			unknown := openUnknownStore()
			cache := openCategoryCache()
			rules := openRuleStore()
			eng := buildEngine(rules, cache)

			var statsSrc review.MerchantStatsSource
			if history, ok := statsSource(); ok {
				defer func() { _ = history.Close() }()
				statsSrc = history
			}

			handler := cli.NewInterruptHandler(os.Stdout)
			ctx := handler.HandleInterrupts(cmd.Context(), true)

			cmd.Println(cli.TitleStyle.Render(cli.SearchIcon + " Merchant review"))

			prompter := cli.NewPrompter(ctx, os.Stdin, os.Stdout)
			workflow := review.NewWorkflow(unknown, cache, sessions, eng, statsSrc, prompter)

			err := workflow.Run(ctx)
			if handler.WasInterrupted() {
				// The interrupt handler already printed the resume hint.
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, cli.ErrInputCancelled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "discard the saved session checkpoint and exit")
	return cmd
}
