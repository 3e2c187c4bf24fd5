package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/config"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/storage"
)

// TestContext selects the storage backend shared by every scenario
type TestContext struct {
	// Postgres is nil when scenarios run on the file driver
	Postgres *Postgres
}

// ServerConfig holds per-scenario server settings
type ServerConfig struct {
	JWTSecret string
}

// ServerInstance is an in-process Ezra server for a single scenario
type ServerInstance struct {
	Server      *server.Server
	ServerURL   string
	Collections *storage.Collections
	dataDir     string
	listener    net.Listener
}

// StartServer starts a server with empty collections on a free port
func StartServer(ctx context.Context, tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	ezraCfg := &config.EzraConfig{
		BindAddress:   "127.0.0.1",
		Port:          3001,
		StorageDriver: config.DriverFile,
		LogLevel:      "error",
		LogFormat:     "json",
		JWTSecret:     cfg.JWTSecret,
		AuditEnabled:  false,
	}

	instance := &ServerInstance{}
	if tc.Postgres != nil {
		if err := tc.Postgres.Truncate(ctx); err != nil {
			return nil, fmt.Errorf("failed to truncate collections: %w", err)
		}
		ezraCfg.StorageDriver = config.DriverPostgres
		ezraCfg.DatabaseURL = tc.Postgres.URL
	} else {
		dir, err := os.MkdirTemp("", "ezra-integration-*")
		if err != nil {
			return nil, err
		}
		instance.dataDir = dir
		ezraCfg.DataDir = dir
	}

	collections, err := storage.Open(ezraCfg)
	if err != nil {
		instance.Stop()
		return nil, err
	}
	instance.Collections = collections
	if err := collections.Ensure(ctx); err != nil {
		instance.Stop()
		return nil, err
	}

	s := server.NewServer(ezraCfg, collections)
	endpoints.RegisterAll(s)
	instance.Server = s

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		instance.Stop()
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	instance.listener = listener
	instance.ServerURL = "http://" + listener.Addr().String()

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts the server down and removes its data directory
func (si *ServerInstance) Stop() {
	if si.Server != nil && si.listener != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.Collections != nil {
		_ = si.Collections.Close()
	}
	if si.dataDir != "" {
		_ = os.RemoveAll(si.dataDir)
	}
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/status")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}
