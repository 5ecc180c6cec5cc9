package migrations

import "embed"

// Migrations holds the session schema, applied by sqlite.Store.ApplyMigrations.
//
//go:embed *.sql
var Migrations embed.FS
