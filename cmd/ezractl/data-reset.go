package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/storage"
)

// dataResetCmd represents the data reset command
var dataResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace every collection with its backup",
	Long: `Replace every collection with its backup.

For each of organizations, locations, groups and members the file
<backup-dir>/<collection>.json is read and written over the live
collection. With the postgres driver the backup files are loaded into the
collections table.

Example:
  ezractl data reset
  ezractl data reset --backup-dir ./fixtures`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := dataConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if err := resetData(cmd.Context(), cmd.OutOrStdout(), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reset data: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	dataCmd.AddCommand(dataResetCmd)
}

// dataConfig loads the configuration, applying --backup-dir
func dataConfig(cmd *cobra.Command) (*config.EzraConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("backup-dir"); dir != "" {
		cfg.BackupDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}

func resetData(ctx context.Context, out io.Writer, cfg *config.EzraConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	collections, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = collections.Close() }()

	if err := collections.Ensure(ctx); err != nil {
		return err
	}
	if err := collections.Reset(ctx, cfg.BackupDir); err != nil {
		return err
	}

	fmt.Fprintf(out, "Data reset from %s\n", cfg.BackupDir)
	return nil
}
