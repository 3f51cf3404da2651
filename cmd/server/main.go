package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "column-task-api",
		Short:   "Hierarchical column task manager API",
		Version: Version,
		// Running the binary without a subcommand starts the server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args)
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())
	rootCmd.AddCommand(importTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
