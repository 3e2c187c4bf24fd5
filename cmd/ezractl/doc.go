// Command ezractl runs the Ezra group management API and manages its data.
//
// # Quick Start
//
//	# Restore the sample data from ./backup into ./data
//	ezractl data reset
//
//	# Start the server on port 3001
//	ezractl server
//
// With the postgres storage driver, run migrations first (or let the server
// do it on start):
//
//	export EZRA_STORAGE_DRIVER=postgres
//	export DATABASE_URL=postgres://postgres@localhost/ezra?sslmode=disable
//	ezractl db migrate
//	ezractl server
//
// # Environment Variables
//
//   - EZRA_CONFIG_PATH: directory holding ezra.yml (default: /etc/ezra)
//   - EZRA_STORAGE_DRIVER: file or postgres (default: file)
//   - EZRA_DATA_DIR, EZRA_BACKUP_DIR: collection directories for the file driver
//   - DATABASE_URL: PostgreSQL connection string
//   - EZRA_JWT_SECRET: HS256 secret; when set /api requires a bearer token
//   - EZRA_LOG_LEVEL, EZRA_LOG_FORMAT: logging
//   - PORT, BIND_ADDRESS: listen address (default: 0.0.0.0:3001)
//
// Run "ezractl configuration show" to see the effective values and where
// each one came from.
package main
