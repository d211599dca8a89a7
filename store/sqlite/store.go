// Package sqlite persists option and transient values in a SQLite database,
// implementing the resolve.OptionStore and resolve.TransientStore
// collaborator interfaces. Values round-trip through JSON, so numbers come
// back as float64 and a stored false stays a literal false, which the
// transient read strategy treats as absent, same as any transient backend.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS options (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transients (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
`

// Store wraps one SQLite database holding an option table and a transient
// table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and prepares the schema. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore prepares the schema on an existing database handle. The caller
// retains ownership of db unless Close is used.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: prepare schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Options returns the option-store view.
func (s *Store) Options() *OptionStore {
	return &OptionStore{store: s}
}

// Transients returns the transient-store view.
func (s *Store) Transients() *TransientStore {
	return &TransientStore{store: s}
}

// OptionStore implements resolve.OptionStore over the options table.
type OptionStore struct {
	store *Store
}

// Get reports absence for both missing rows and undecodable values; the
// engines have no error channel for reads.
func (o *OptionStore) Get(name string) (any, bool) {
	var encoded string
	err := o.store.db.QueryRow(`SELECT value FROM options WHERE name = ?`, name).Scan(&encoded)
	if err != nil {
		return nil, false
	}
	return decode(encoded)
}

func (o *OptionStore) Set(name string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("sqlite: encode option %q: %w", name, err)
	}
	_, err = o.store.db.Exec(
		`INSERT INTO options (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("sqlite: set option %q: %w", name, err)
	}
	return nil
}

// TransientStore implements resolve.TransientStore over the transients
// table. Expired rows are deleted lazily on read.
type TransientStore struct {
	store *Store
}

func (t *TransientStore) Get(name string) (any, bool) {
	var encoded string
	var expiresAt int64
	err := t.store.db.QueryRow(
		`SELECT value, expires_at FROM transients WHERE name = ?`, name,
	).Scan(&encoded, &expiresAt)
	if err != nil {
		return nil, false
	}
	if expiresAt > 0 && t.store.now().Unix() > expiresAt {
		t.store.db.Exec(`DELETE FROM transients WHERE name = ?`, name)
		return nil, false
	}
	return decode(encoded)
}

func (t *TransientStore) Set(name string, value any, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("sqlite: encode transient %q: %w", name, err)
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = t.store.now().Add(ttl).Unix()
	}
	_, err = t.store.db.Exec(
		`INSERT INTO transients (name, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		name, string(encoded), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: set transient %q: %w", name, err)
	}
	return nil
}

func decode(encoded string) (any, bool) {
	var value any
	if err := json.Unmarshal([]byte(encoded), &value); err != nil {
		return nil, false
	}
	return value, true
}
