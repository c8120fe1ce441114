// Package store persists known releases, cached comparisons and
// per-connector changes in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/paulstuart/trinover/pkg/model"
	"github.com/paulstuart/trinover/pkg/version"
)

// ErrNotFound is returned when no unexpired comparison is cached.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens the database at path. Use ":memory:" for a private
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS versions (
		version TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS comparisons (
		from_version TEXT NOT NULL,
		to_version TEXT NOT NULL,
		comparison_data TEXT,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		PRIMARY KEY (from_version, to_version)
	);

	CREATE TABLE IF NOT EXISTS connector_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		connector_name TEXT NOT NULL,
		version TEXT NOT NULL,
		change_type TEXT NOT NULL,
		description TEXT NOT NULL,
		impact TEXT,
		created_at DATETIME NOT NULL,
		UNIQUE (connector_name, version, change_type, description)
	);

	CREATE INDEX IF NOT EXISTS idx_connector_changes_name ON connector_changes(connector_name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddVersions records release numbers, ignoring ones already known.
func (s *Store) AddVersions(ctx context.Context, versions ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, v := range versions {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO versions (version, created_at) VALUES (?, ?)`, v, now); err != nil {
			return fmt.Errorf("failed to add version %s: %w", v, err)
		}
	}
	return tx.Commit()
}

// Versions returns every known release, newest first.
func (s *Store) Versions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT version FROM versions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	version.SortDescending(out)
	return out, nil
}

// GetComparison returns the cached change set for the pair if it has not
// expired at now.
func (s *Store) GetComparison(ctx context.Context, from, to string, now time.Time) (model.ChangeSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		data      sql.NullString
		expiresAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT comparison_data, expires_at FROM comparisons WHERE from_version = ? AND to_version = ?`,
		from, to).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ChangeSet{}, ErrNotFound
	}
	if err != nil {
		return model.ChangeSet{}, err
	}
	if !expiresAt.After(now) || !data.Valid || data.String == "" {
		return model.ChangeSet{}, ErrNotFound
	}

	var cs model.ChangeSet
	if err := json.Unmarshal([]byte(data.String), &cs); err != nil {
		return model.ChangeSet{}, fmt.Errorf("invalid cached comparison %s..%s: %w", from, to, err)
	}
	return cs, nil
}

// PutComparison caches a change set until now+ttl, replacing any previous entry.
func (s *Store) PutComparison(ctx context.Context, from, to string, cs model.ChangeSet, now time.Time, ttl time.Duration) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comparisons (from_version, to_version, comparison_data, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (from_version, to_version) DO UPDATE SET
			comparison_data = excluded.comparison_data,
			expires_at = excluded.expires_at`,
		from, to, string(data), now.UTC(), now.Add(ttl).UTC())
	if err != nil {
		return fmt.Errorf("failed to cache comparison %s..%s: %w", from, to, err)
	}
	return nil
}

// AddConnectorChanges stores changes that are not already recorded and
// reports how many were new.
func (s *Store) AddConnectorChanges(ctx context.Context, changes []model.ConnectorChange) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, c := range changes {
		created := c.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO connector_changes
				(connector_name, version, change_type, description, impact, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.Connector, c.Version, c.ChangeType, c.Description, c.Impact, created.UTC())
		if err != nil {
			return 0, fmt.Errorf("failed to store change for %s: %w", c.Connector, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ConnectorChanges returns every stored change for a connector in insertion order.
func (s *Store) ConnectorChanges(ctx context.Context, name string) ([]model.ConnectorChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT connector_name, version, change_type, description, COALESCE(impact, ''), created_at
		FROM connector_changes WHERE connector_name = ? ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ConnectorChange
	for rows.Next() {
		var c model.ConnectorChange
		if err := rows.Scan(&c.Connector, &c.Version, &c.ChangeType, &c.Description, &c.Impact, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ConnectorNames returns the distinct connectors with stored changes.
func (s *Store) ConnectorNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT connector_name FROM connector_changes ORDER BY connector_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
