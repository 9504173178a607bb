package cache

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore is a persistent single-node Store backed by SQLite.
// Expiry timestamps are stored with millisecond resolution, so
// sub-second TTLs behave the same as with MemoryStore. Like all
// backends, expiry is lazy: an expired row is purged by the read that
// discovers it.
type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore creates a new store with the given filename as the db.
// If the file name is empty, a shared in-memory db is opened.
func NewSQLiteStore(filename string) (*SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		expires INTEGER,
		value BLOB
	)`)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS expires_idx ON cache (expires)"); err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}
	return &SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var expires int64
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT expires, value FROM cache WHERE key = ?", key).
		Scan(&expires, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// a row with zero expiry never expires
	if expires != 0 && time.Now().UnixMilli() >= expires {
		s.purge(ctx, key)
		return nil, nil
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		s.purge(ctx, key)
		return nil
	}
	var expires int64
	if ttl != 0 {
		expires = time.Now().Add(ttl).UnixMilli()
	}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache (key, expires, value) VALUES (?, ?, ?)",
		key, expires, value)
	return err
}

func (s *SQLiteStore) purge(ctx context.Context, key string) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	s.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key)
}
