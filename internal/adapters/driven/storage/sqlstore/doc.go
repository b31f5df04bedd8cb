// Package sqlstore implements the record store ports on SQL databases.
//
// Two drivers are supported behind github.com/jmoiron/sqlx:
//
//   - modernc.org/sqlite, a pure Go SQLite used by default at
//     ~/.docrag/data/docrag.db
//   - github.com/lib/pq for PostgreSQL when DATABASE_URL is a postgres:// URL
//
// Queries are written with ? placeholders and rebound per driver.
// Timestamps are stored as unix milliseconds so the schema stays portable.
//
// # Schema
//
// The schema is managed through versioned migrations in migrations/.
// Applied versions are recorded in schema_migrations.
package sqlstore
