// Package sqlitestore keeps FitCamp storage scopes in a SQLite database.
// One database file plays the part of an origin: every process that opens it
// shares the same scopes, the way browser tabs share localStorage.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jrsteele09/fitcamp-session/storage"
)

// SharedScope is the scope every tab reads and writes.
const SharedScope = "shared"

// TabScope returns the private scope name for a tab profile.
func TabScope(profile string) string {
	return "tab:" + profile
}

// DB wraps the SQLite connection pool holding every scope.
type DB struct {
	db *sql.DB
}

// Open creates or opens the database at path, enables WAL mode and creates
// the schema. Several processes may open the same file concurrently.
func Open(path string) (*DB, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=busy_timeout(5000)&_pragma=synchronous(normal)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite setup (journal_mode): %w", err)
	}

	d := &DB{db: db}
	if err := d.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the key/value table if it does not already exist.
func (d *DB) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kv (
	scope TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (scope, key)
);`
	if _, err := d.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

// Scope returns the partition called name.
func (d *DB) Scope(name string) *Scope {
	return &Scope{db: d.db, name: name}
}

// DropScope removes every key in the named scope.
func (d *DB) DropScope(name string) error {
	_, err := d.db.Exec(`DELETE FROM kv WHERE scope = ?`, name)
	return err
}

var _ storage.Store = (*Scope)(nil)

// Scope is one storage partition inside the database.
type Scope struct {
	db   *sql.DB
	name string
}

func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE scope = ? AND key = ?`, s.name, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite get %s/%s: %w", s.name, key, err)
	}
	return value, nil
}

func (s *Scope) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite set %s/%s: %w", s.name, key, err)
	}
	return nil
}

func (s *Scope) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE scope = ? AND key = ?`, s.name, key); err != nil {
		return fmt.Errorf("sqlite delete %s/%s: %w", s.name, key, err)
	}
	return nil
}

func (s *Scope) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv WHERE scope = ? ORDER BY key`, s.name)
	if err != nil {
		return nil, fmt.Errorf("sqlite keys %s: %w", s.name, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func ensureParentDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o750)
}
