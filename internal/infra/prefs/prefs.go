// Package prefs persists user-local choices durably across sessions:
// identity, favorites, hidden songs and sort preferences. Writes are
// synchronous single-key mutations; there is no batching.
package prefs

import (
	"database/sql"
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Preference keys. Each is persisted independently and never sent to
// the server as bulk state.
const (
	KeyUserID      = "user_id"
	KeyUserName    = "user_name"
	KeyUserAvatar  = "user_avatar"
	KeyFavorites   = "favorites"
	KeyHidden      = "hidden"
	KeyCatalogSort = "catalog_sort"
	KeyUpNextSort  = "upnext_sort"
	KeyLastTab     = "last_tab"
)

// Store is the durable key-value preference store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the preference database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open preference database")
	}

	schema := `CREATE TABLE IF NOT EXISTS prefs (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create preference schema")
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for a key, with ok=false when unset.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "failed to read preference %q", key)
	}
	return value, true, nil
}

// Set writes a key immediately and durably.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrapf(err, "failed to write preference %q", key)
}

// GetDefault returns the value for a key or the fallback when unset.
func (s *Store) GetDefault(key, fallback string) (string, error) {
	v, ok, err := s.Get(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return fallback, nil
	}
	return v, nil
}

// UserID returns the durable unique user id, minting and persisting one
// on first run.
func (s *Store) UserID() (string, error) {
	id, ok, err := s.Get(KeyUserID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.New().String()
	if err := s.Set(KeyUserID, id); err != nil {
		return "", err
	}
	return id, nil
}

// keySet reads a JSON-serialized set of song identity keys.
func (s *Store) keySet(key string) (map[string]struct{}, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	if !ok || raw == "" {
		return set, nil
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, errors.Wrapf(err, "corrupt preference %q", key)
	}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

// writeKeySet persists a set as a sorted JSON array for stable storage.
func (s *Store) writeKeySet(key string, set map[string]struct{}) error {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	raw, err := json.Marshal(keys)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize preference %q", key)
	}
	return s.Set(key, string(raw))
}

// Favorites returns the favorited song identity keys.
func (s *Store) Favorites() (map[string]struct{}, error) {
	return s.keySet(KeyFavorites)
}

// ToggleFavorite flips a song's favorite state and reports the new state.
func (s *Store) ToggleFavorite(songKey string) (bool, error) {
	return s.toggle(KeyFavorites, songKey)
}

// Hidden returns the hidden song identity keys.
func (s *Store) Hidden() (map[string]struct{}, error) {
	return s.keySet(KeyHidden)
}

// ToggleHidden flips a song's hidden state and reports the new state.
func (s *Store) ToggleHidden(songKey string) (bool, error) {
	return s.toggle(KeyHidden, songKey)
}

func (s *Store) toggle(prefKey, songKey string) (bool, error) {
	set, err := s.keySet(prefKey)
	if err != nil {
		return false, err
	}
	_, present := set[songKey]
	if present {
		delete(set, songKey)
	} else {
		set[songKey] = struct{}{}
	}
	if err := s.writeKeySet(prefKey, set); err != nil {
		return false, err
	}
	return !present, nil
}
