package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
)

// resetDebounce collapses the burst of events an editor or cp produces
// into one reset
const resetDebounce = 250 * time.Millisecond

// dataWatchCmd represents the data watch command
var dataWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the backup directory and reset the data when a backup changes",
	Long: `Watch the backup directory and reset the data when a backup changes.

Whenever one of organizations.json, locations.json, groups.json or
members.json is written in the backup directory, every collection is
restored from its backup, as "ezractl data reset" does.

Example:
  ezractl data watch
  ezractl data watch --backup-dir ./backup`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := dataConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		if err := watchData(cmd.OutOrStdout(), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch backups: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	dataCmd.AddCommand(dataWatchCmd)
}

func watchData(out io.Writer, cfg *config.EzraConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := newBackupWatcher(cfg.BackupDir)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	fmt.Fprintf(out, "Watching %s for backup changes\n", cfg.BackupDir)

	return watchBackups(ctx, watcher, resetDebounce, func() error {
		return resetData(ctx, out, cfg)
	})
}

func newBackupWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// watch the directory, not the files, so replacing a file by rename is seen
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	return watcher, nil
}

// isBackupFile reports whether name is the backup of a known collection
func isBackupFile(name string) bool {
	base := filepath.Base(name)
	for _, kind := range model.KindValues() {
		if base == kind.Collection()+".json" {
			return true
		}
	}
	return false
}

// watchBackups calls reset once per burst of writes to a backup file until
// ctx is done or the watcher is closed. A failed reset is logged and the
// watch continues.
func watchBackups(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, reset func() error) error {
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isBackupFile(event.Name) {
				continue
			}

			logging.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("backup changed")
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			logging.Info().Msg("backup changed, resetting data")
			if err := reset(); err != nil {
				logging.Error().Err(err).Msg("data reset failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Err(err).Msg("watcher error")

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		}
	}
}
