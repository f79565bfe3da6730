package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kioku-app/kioku/internal/backup"
	"github.com/kioku-app/kioku/internal/card"
)

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the user's cards and scheduling state to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := connectDatabase(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("os.Create(%q) > %w", args[0], err)
			}
			defer func() {
				_ = file.Close()
			}()

			svc := backup.NewService(card.NewDBRepository(db), nil)
			if err := svc.Export(ctx, userFlag, file); err != nil {
				return fmt.Errorf("backup.Export() > %w", err)
			}
			fmt.Printf("Exported cards to %s\n", args[0])
			return nil
		},
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import cards and scheduling state from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := connectDatabase(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("os.Open(%q) > %w", args[0], err)
			}
			defer func() {
				_ = file.Close()
			}()

			svc := backup.NewService(card.NewDBRepository(db), nil)
			count, err := svc.Import(ctx, userFlag, file)
			if err != nil {
				return fmt.Errorf("backup.Import() > %w", err)
			}
			fmt.Printf("Imported %d card(s) from %s\n", count, args[0])
			return nil
		},
	}
}
