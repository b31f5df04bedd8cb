// Package migrations embeds SQL migration files for the record store.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
// The SQL is portable between SQLite and PostgreSQL.
//
//go:embed *.sql
var FS embed.FS
