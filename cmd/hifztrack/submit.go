package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hifztrack/internal/api"
	"hifztrack/internal/session"
)

func newSubmitCommand() *cobra.Command {
	var rating string
	var notes string
	var mistakes []int
	var audioRecorded bool

	command := &cobra.Command{
		Use:   "submit <page>",
		Short: "Submit one study session without the interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pageNumber int
			if _, err := fmt.Sscanf(args[0], "%d", &pageNumber); err != nil {
				return fmt.Errorf("page must be a number: %w", err)
			}

			application, err := newApp()
			if err != nil {
				return err
			}
			defer application.Close()

			service, err := application.newService()
			if err != nil {
				return err
			}

			ctx := context.Background()
			submission := service.Collect(session.CollectParams{
				PageNumber:    pageNumber,
				Mistakes:      mistakes,
				Rating:        rating,
				Notes:         notes,
				AudioRecorded: audioRecorded,
			})

			result, err := service.Submit(ctx, submission)
			if err != nil {
				return err
			}
			if result.Delivered {
				fmt.Printf("Recitation saved (id %d)\n", result.Record.ID)
				return nil
			}
			fmt.Println("Offline: submission queued for delivery")
			return nil
		},
	}

	command.Flags().StringVar(&rating, "rating", "", "session rating ("+strings.Join(api.Ratings, ", ")+")")
	command.Flags().StringVar(&notes, "notes", "", "optional session notes")
	command.Flags().IntSliceVar(&mistakes, "mistake", nil, "word id marked as a mistake (repeatable)")
	command.Flags().BoolVar(&audioRecorded, "audio", false, "mark that a recording was captured for this session")
	return command
}
