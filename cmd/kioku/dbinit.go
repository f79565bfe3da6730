package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kioku-app/kioku/internal/database"
)

func newDBInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "db-init",
		Short: "Create the database schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			if err := database.InitSchema(db); err != nil {
				return fmt.Errorf("database.InitSchema() > %w", err)
			}
			fmt.Println("Database schema is ready.")
			return nil
		},
	}
}
