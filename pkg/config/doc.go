// Package config provides configuration management for the Ezra API.
//
// Configuration is resolved in three layers, each overriding the previous:
//
//   - built-in defaults
//   - an optional YAML file at $EZRA_CONFIG_PATH/ezra.yml (default /etc/ezra)
//   - environment variables
//
// Every attribute remembers which layer supplied it so that
// `ezractl configuration show` can report it.
//
// # Key Configuration Options
//
//   - PORT, BIND_ADDRESS: HTTP listener
//   - EZRA_STORAGE_DRIVER: "file" (JSON files in EZRA_DATA_DIR) or "postgres"
//   - DATABASE_URL: PostgreSQL connection string for the postgres driver
//   - EZRA_LOG_LEVEL, EZRA_LOG_FORMAT: logging
//   - EZRA_JWT_SECRET: enables bearer token authentication on /api
package config
