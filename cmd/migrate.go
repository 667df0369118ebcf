package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-api/config"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := config.Migrate(a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			a.log.Info("schema migrated")
			return nil
		},
	}
}
