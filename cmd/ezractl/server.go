package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/audit"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/logging"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Ezra application server",
	Long: `Run the Ezra application server.

Configuration is read from ezra.yml and the environment; --port and
--bind-address override both.

With the postgres storage driver, database migrations are run on startup.
Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServer(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", 3001, "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", "0.0.0.0", "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

// serverConfig loads the configuration and applies flags the user set
func serverConfig(cmd *cobra.Command) (*config.EzraConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind-address") {
		cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command) error {
	cfg, err := serverConfig(cmd)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	audit.SetEnabled(cfg.AuditEnabled)

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if cfg.StorageDriver == config.DriverPostgres && !noMigrate {
		logging.Info().Msg("running database migrations")
		if err := runMigrations(cmd.OutOrStdout(), cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	collections, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = collections.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := collections.Ensure(ctx); err != nil {
		return err
	}

	s := server.NewServer(cfg, collections)
	endpoints.RegisterAll(s)

	logging.Info().
		Str("driver", cfg.StorageDriver).
		Bool("auth", cfg.AuthEnabled()).
		Str("version", server.Version).
		Msgf("running server at http://%s", s.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}
