package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	userFlag   string
)

func main() {
	// A missing .env file is fine, environment variables still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "kioku",
		Short:         "Spaced repetition flashcards in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "default", "user to act as")

	rootCmd.AddCommand(newReviewCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newDBInitCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
