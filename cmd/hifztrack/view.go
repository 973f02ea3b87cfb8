package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hifztrack/internal/cli"
	"hifztrack/internal/mushaf"
	"hifztrack/internal/quran"
)

func newViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [page]",
		Short: "Open a Mushaf page for hidden-text review and mistake tracking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startPage := quran.MinPage
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("page must be a number: %w", err)
				}
				startPage = parsed
			}

			application, err := newApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := context.Background()

			names, err := application.client.GetSurahNames(ctx)
			if err != nil {
				return fmt.Errorf("client.GetSurahNames > %w", err)
			}

			service, err := application.newService()
			if err != nil {
				return err
			}
			service.Start(ctx)
			defer service.Stop()

			loader := mushaf.NewLoader(application.client, mushaf.LoaderConfig{
				DelayUnit: time.Duration(application.cfg.Submission.RetryUnitMS) * time.Millisecond,
			})
			view := mushaf.NewView(loader, application.store, nil)
			defer view.Close()

			pageCLI, err := cli.NewPageSessionCLI(ctx, view, service, names, startPage)
			if err != nil {
				return err
			}

			fmt.Println("Mushaf review session started. Words are hidden; type 'r' to reveal.")
			fmt.Println()
			return pageCLI.Run(ctx, pageCLI)
		},
	}
}
