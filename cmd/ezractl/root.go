package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ezractl",
	Short: "Run and manage the Ezra API server",
	Long: `Run and manage the Ezra API server.

Ezra serves organizations, locations, groups and members over a REST API
backed by JSON files or PostgreSQL.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
