package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hifztrack/internal/api"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check backend connectivity and the offline queue size",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			defer application.Close()

			service, err := application.newService()
			if err != nil {
				return err
			}

			err = application.client.TestConnection(context.Background())
			switch {
			case err == nil:
				fmt.Println("Backend: reachable")
			case api.IsApplicationError(err):
				fmt.Printf("Backend: reachable but unhealthy (%v)\n", err)
			default:
				fmt.Printf("Backend: unreachable (%v)\n", err)
			}

			items, err := service.ListQueued()
			if err != nil {
				return err
			}
			fmt.Printf("Offline queue: %d submission(s)\n", len(items))
			return nil
		},
	}
}
