// Package db embeds the PostgreSQL schema migrations.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
