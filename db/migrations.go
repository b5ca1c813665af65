// Package db carries the SQL schema migrations.
package db

import "embed"

// Migrations holds the files under migrations/ for embedded builds.
//
//go:embed migrations/*.sql
var Migrations embed.FS
