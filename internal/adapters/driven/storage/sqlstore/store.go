package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlstore/migrations"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultFilename is the SQLite database file inside the data directory.
const DefaultFilename = "docrag.db"

var (
	_ driven.DocumentStore     = (*Store)(nil)
	_ driven.ChatStore         = (*Store)(nil)
	_ driven.DatabaseInspector = (*Store)(nil)
)

// Config selects the database.
type Config struct {
	// URL is a postgres:// URL or a SQLite file path. Empty uses DataDir.
	URL string

	// DataDir holds the SQLite file when URL is empty
	// (default: ~/.docrag/data).
	DataDir string
}

// Store is the SQL-backed record store.
type Store struct {
	db     *sqlx.DB
	driver string
	dsn    string
	now    func() time.Time
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, dsn, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	s := newStore(db, driver)
	s.dsn = dsn
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func newStore(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver, now: time.Now}
}

// resolve maps the config onto a driver name and DSN.
func resolve(cfg Config) (driver, dsn string, err error) {
	if strings.HasPrefix(cfg.URL, "postgres://") || strings.HasPrefix(cfg.URL, "postgresql://") {
		return DriverPostgres, cfg.URL, nil
	}

	path := strings.TrimPrefix(cfg.URL, "sqlite://")
	if path == "" {
		dataDir := cfg.DataDir
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", "", fmt.Errorf("getting home directory: %w", err)
			}
			dataDir = filepath.Join(home, ".docrag", "data")
		}
		path = filepath.Join(dataDir, DefaultFilename)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", "", fmt.Errorf("creating data directory: %w", err)
	}
	return DriverSQLite, path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind converts ? placeholders for the active driver.
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

func (s *Store) millis() int64 {
	return s.now().UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// migrate runs all pending up migrations, each in its own transaction.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at BIGINT NOT NULL
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.GetContext(ctx, &current, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			s.rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
			version, s.millis()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// notFound maps sql.ErrNoRows onto domain.ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return err
}

// requireRow returns domain.ErrNotFound when an update or delete touched nothing.
func requireRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return nil
}
