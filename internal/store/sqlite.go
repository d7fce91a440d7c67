package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db   *sql.DB
	path string

	mu  sync.Mutex
	now Clock
}

// OpenSQLite opens (creating if needed) the database at path and runs
// the schema migration.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &SQLite{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			bucket     TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			updated_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (bucket, key)
		);
		CREATE INDEX IF NOT EXISTS kv_expires ON kv (expires_at) WHERE expires_at > 0;
	`)
	return err
}

// SetClock replaces the time source used for TTLs.
func (s *SQLite) SetClock(c Clock) {
	s.mu.Lock()
	s.now = c
	s.mu.Unlock()
}

func (s *SQLite) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Get(bucket, key string) ([]byte, bool, error) {
	now := s.clock().UnixNano()
	var value []byte
	err := s.db.QueryRow(
		`SELECT value FROM kv WHERE bucket = ? AND key = ? AND (expires_at = 0 OR expires_at > ?)`,
		bucket, key, now,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	return value, true, nil
}

func (s *SQLite) Put(bucket, key string, value []byte, ttl time.Duration) error {
	if value == nil {
		value = []byte{}
	}
	now := s.clock()
	var expires int64
	if ttl > 0 {
		expires = now.Add(ttl).UnixNano()
	}
	_, err := s.db.Exec(`
		INSERT INTO kv (bucket, key, value, updated_at, expires_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (bucket, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`,
		bucket, key, value, now.UnixNano(), expires,
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *SQLite) Delete(bucket, key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *SQLite) List(bucket string) ([]Entry, error) {
	now := s.clock().UnixNano()
	rows, err := s.db.Query(`
		SELECT key, value, updated_at, expires_at FROM kv
		WHERE bucket = ? AND (expires_at = 0 OR expires_at > ?)
		ORDER BY key ASC`, bucket, now)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", bucket, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated, expires int64
		if err := rows.Scan(&e.Key, &e.Value, &updated, &expires); err != nil {
			return nil, fmt.Errorf("scan %s: %w", bucket, err)
		}
		e.UpdatedAt = time.Unix(0, updated)
		if expires > 0 {
			e.ExpiresAt = time.Unix(0, expires)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", bucket, err)
	}
	return out, nil
}

func (s *SQLite) Clear(bucket string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE bucket = ?`, bucket); err != nil {
		return fmt.Errorf("clear %s: %w", bucket, err)
	}
	return nil
}

// Prune deletes every expired entry.
func (s *SQLite) Prune() error {
	now := s.clock().UnixNano()
	if _, err := s.db.Exec(`DELETE FROM kv WHERE expires_at > 0 AND expires_at <= ?`, now); err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
