package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"hifztrack/internal/store"
)

func newQueueCommand() *cobra.Command {
	queueCommand := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the offline submission queue",
	}

	queueCommand.AddCommand(
		newQueueListCommand(),
		newQueueDrainCommand(),
		newQueueRemoveCommand(),
	)
	return queueCommand
}

func newQueueListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued submissions in enqueue order",
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

			items, err := service.ListQueued()
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("The offline queue is empty.")
				return nil
			}

			writer := table.NewWriter()
			writer.SetOutputMirror(os.Stdout)
			writer.AppendHeader(table.Row{"ID", "Enqueued", "Page", "Rating", "Retries"})
			for _, item := range items {
				writer.AppendRow(table.Row{
					item.ID,
					item.EnqueuedAt.Format("2006-01-02 15:04:05"),
					item.Payload.PageNumber,
					item.Payload.Rating,
					item.RetryCount,
				})
			}
			writer.Render()
			return nil
		},
	}
}

func newQueueDrainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Replay queued submissions against the backend now",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp()
			if err != nil {
				return err
			}
			defer application.Close()

			var dropped []store.QueueItem
			service, err := application.newServiceWithFailureListener(func(item store.QueueItem, err error) {
				dropped = append(dropped, item)
				fmt.Printf("Dropped submission %s (page %d) after repeated failures: %v\n",
					item.ID, item.Payload.PageNumber, err)
			})
			if err != nil {
				return err
			}

			before, err := service.ListQueued()
			if err != nil {
				return err
			}
			if len(before) == 0 {
				fmt.Println("The offline queue is empty.")
				return nil
			}

			if err := service.DrainQueue(context.Background()); err != nil {
				return err
			}

			after, err := service.ListQueued()
			if err != nil {
				return err
			}
			fmt.Printf("Delivered %d, dropped %d, %d still queued\n",
				len(before)-len(after)-len(dropped), len(dropped), len(after))
			return nil
		},
	}
}

func newQueueRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Discard a queued submission without delivering it",
		Args:  cobra.ExactArgs(1),
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

			if err := service.RemoveQueued(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed submission %s from the queue\n", args[0])
			return nil
		},
	}
}
