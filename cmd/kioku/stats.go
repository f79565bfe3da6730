package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kioku-app/kioku/internal/activity"
	"github.com/kioku-app/kioku/internal/card"
	"github.com/kioku-app/kioku/internal/database"
	"github.com/kioku-app/kioku/internal/review"
	"github.com/kioku-app/kioku/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the learning dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			db, err := database.Connect(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Connect() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			stats := statistics.NewService(
				card.NewDBRepository(db),
				review.NewDBLogRepository(db),
				activity.NewDBRepository(db),
				cfg.Dashboard,
				nil,
			)
			summary, err := stats.Summarize(ctx, userFlag)
			if err != nil {
				return fmt.Errorf("stats.Summarize() > %w", err)
			}

			bold := color.New(color.Bold)
			fmt.Println(bold.Sprint("Dashboard"))
			fmt.Printf("  Total cards:    %d\n", summary.TotalCards)
			fmt.Printf("  Due now:        %s\n", color.YellowString("%d", summary.DueCount))
			fmt.Printf("  Learned:        %s\n", color.GreenString("%d", summary.LearnedCount))
			fmt.Printf("  Retention rate: %.1f%%\n", summary.RetentionRate)
			fmt.Printf("  Streak:         %d day(s)\n", summary.StreakCount)

			if len(summary.Forecast) > 0 {
				fmt.Println(bold.Sprint("Forecast"))
				for _, bucket := range summary.Forecast {
					fmt.Printf("  within %d day(s): %d\n", bucket.Days, bucket.Count)
				}
			}
			return nil
		},
	}
}
