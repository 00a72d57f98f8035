package gamedata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the durable cache tier. It survives process restarts and is the
// source of truth on cold start; the in-memory tier is rebuilt lazily from it.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// NewStore opens (or creates) the sqlite-backed store at the given DSN.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS game_cache (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a record by id. Returns (nil, nil) on a miss. Reads never
// take the write lock.
func (s *Store) Get(ctx context.Context, id string) (*GameData, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM game_cache WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data GameData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", id, err)
	}
	return &data, nil
}

// Set writes a record. Writes are serialized so concurrent fetch completions
// cannot interleave on the on-disk representation.
func (s *Store) Set(ctx context.Context, id string, data *GameData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO game_cache (id, payload, fetched_at) VALUES (?, ?, ?)`,
		id, string(payload), time.Now().UTC())
	return err
}
