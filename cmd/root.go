// Package cmd is the command line of the library API.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "library-api",
	Short: "Library management API",
	Long: `Library management API: book catalogue, reservations, due-date
notifications and the librarian dashboard.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewSeedCommand())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
