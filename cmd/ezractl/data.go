package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// dataCmd represents the data command
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage collection data",
	Long:  `Restore collections from backup files, once or whenever a backup changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'data' requires a subcommand (reset, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.PersistentFlags().String("backup-dir", "", "directory holding the backup <collection>.json files (default: backup_dir from configuration)")
}
