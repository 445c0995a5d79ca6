// Package store is a SQLite-backed implementation of cache.Cache, for running
// several engine processes against one shared response cache.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ademuri/taste-engine/internal/cache"
)

const createTables = `
CREATE TABLE IF NOT EXISTS CacheEntry (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS CacheEntryExpiry ON CacheEntry(expires_at);
`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ cache.Cache = (*Store)(nil)

// New opens (or creates) the cache database at dbPath. ":memory:" gives a
// private in-process database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to ":memory:" is its own database, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key if it has not expired. Database errors are
// logged and reported as a miss so a broken cache never fails a request.
func (s *Store) Get(key string) ([]byte, bool) {
	var value []byte
	var expiresAt int64
	err := s.db.QueryRow("SELECT value, expires_at FROM CacheEntry WHERE key = ?", key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("WARN store: reading %q: %v", key, err)
		return nil, false
	}

	if s.now().UnixMilli() >= expiresAt {
		if _, err := s.db.Exec("DELETE FROM CacheEntry WHERE key = ? AND expires_at = ?", key, expiresAt); err != nil {
			log.Printf("WARN store: dropping expired %q: %v", key, err)
		}
		return nil, false
	}
	return value, true
}

func (s *Store) Set(key string, value []byte, ttl time.Duration) {
	_, err := s.db.Exec(`
	INSERT INTO CacheEntry (key, value, expires_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
	  value = excluded.value,
	  expires_at = excluded.expires_at
	`, key, value, s.now().Add(ttl).UnixMilli())
	if err != nil {
		log.Printf("WARN store: writing %q: %v", key, err)
	}
}

func (s *Store) EvictExpired() int {
	res, err := s.db.Exec("DELETE FROM CacheEntry WHERE expires_at <= ?", s.now().UnixMilli())
	if err != nil {
		log.Printf("WARN store: evicting expired entries: %v", err)
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
