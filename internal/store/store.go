// Package store persists game states into named save slots backed by a
// local sqlite file. Values travel as gob blobs, the same encoding the
// server keeps in postgres, so a state saved locally and one stored
// remotely stay interchangeable.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkarpenko/sweeper/internal/game"
)

var ErrNotFound = errors.New("no saved game in slot")

type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open save file: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS save (
	slot		TEXT PRIMARY KEY,
	state		BLOB NOT NULL,
	saved_at	TEXT NOT NULL
);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create save table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the state into slot, replacing any previous save there.
func (s *Store) Save(slot string, state *game.State) error {
	b, err := state.Bytes()
	if err != nil {
		return fmt.Errorf("unable to encode game state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
INSERT INTO save (slot, state, saved_at)
VALUES (?, ?, ?)
ON CONFLICT(slot)
DO UPDATE SET state = excluded.state, saved_at = excluded.saved_at;`,
		slot, b, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Load restores the state saved in slot, or ErrNotFound.
func (s *Store) Load(slot string) (*game.State, error) {
	var b []byte
	err := s.db.QueryRow(
		`SELECT state FROM save WHERE slot = ?;`, slot,
	).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return game.Decode(b)
}

// Delete drops slot without checking that it existed.
func (s *Store) Delete(slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM save WHERE slot = ?;`, slot)
	return err
}
