package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/cli"
	"github.com/kioku-app/kioku/internal/review"
)

func newReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review the cards that are due in an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := connectDatabase(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			cards := card.NewDBRepository(db)
			reviews := review.NewService(cards, review.NewDBLogRepository(db), nil)
			activities := activity.NewService(activity.NewDBRepository(db), nil)

			session, err := cli.NewReviewSession(ctx, userFlag, cards, reviews, activities, nil)
			if err != nil {
				return fmt.Errorf("cli.NewReviewSession() > %w", err)
			}

			if session.CardCount() > 0 {
				fmt.Printf("Starting review session with %d card(s)\n\n", session.CardCount())
			}
			return session.Run(ctx)
		},
	}
}
