package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hifztrack/internal/cli"
	"hifztrack/internal/dashboard"
)

func newDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Browse, edit, and delete past study sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := context.Background()
			browser := dashboard.NewBrowser(application.client, application.cfg.Dashboard.PageSize)
			dashboardCLI, err := cli.NewDashboardCLI(ctx, browser,
				time.Duration(application.cfg.Dashboard.DebounceMS)*time.Millisecond)
			if err != nil {
				return err
			}

			fmt.Println("Dashboard session started. Type a command, or anything else for help.")
			fmt.Println()
			return dashboardCLI.Run(ctx, dashboardCLI)
		},
	}
}
