// Package state provides the thread-safe application state store: the
// normalized catalog, the authoritative queue mirror and their derived
// indexes. It replaces implicit globals so view derivation stays a pure
// function of explicit inputs.
package state

import (
	"sync"

	"github.com/hibiki-dev/encore/internal/domain/genre"
	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// Store manages shared client state with thread-safe access. Mutations
// replace whole values; readers get consistent snapshots.
type Store struct {
	mu sync.RWMutex

	catalog    []song.Song
	catalogErr error

	mirror queue.Snapshot

	aggregator genre.Aggregator
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// ReplaceCatalog normalizes the raw records and installs them as the new
// catalog, invalidating every derived cache. The catalog is never
// patched field by field.
func (s *Store) ReplaceCatalog(raw []song.Song) {
	normalized := song.NormalizeCatalog(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = normalized
	s.catalogErr = nil
	s.aggregator.Invalidate()
}

// SetCatalogError marks the catalog as unavailable. Browsing is disabled
// until a successful reload; queue features are unaffected.
func (s *Store) SetCatalogError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogErr = err
}

// CatalogError returns the sticky catalog load failure, if any.
func (s *Store) CatalogError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogErr
}

// Catalog returns the current normalized catalog.
func (s *Store) Catalog() []song.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// ApplySnapshot installs an authoritative queue snapshot, replacing the
// mirror wholesale. When the snapshot carries a full catalog that is
// installed too.
func (s *Store) ApplySnapshot(snap queue.Snapshot) {
	if len(snap.Songs) > 0 {
		s.ReplaceCatalog(snap.Songs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = snap
}

// UpdateVotes patches the vote counts of one mirror entry in place.
// Vote deltas are the one push that does not replace the mirror, since
// they never change the queue ordering the server decided.
func (s *Store) UpdateVotes(queueID, upvotes, downvotes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mirror.Entries {
		if s.mirror.Entries[i].ID == queueID {
			s.mirror.Entries[i].Upvotes = upvotes
			s.mirror.Entries[i].Downvotes = downvotes
			return
		}
	}
}

// Queue returns the current queue mirror.
func (s *Store) Queue() queue.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirror
}

// QueuedKeys returns the identity keys of all songs in the mirror, for
// queued-first sorting and request-button state.
func (s *Store) QueuedKeys() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make(map[string]struct{}, len(s.mirror.Entries))
	for _, e := range s.mirror.Entries {
		keys[e.SongKey()] = struct{}{}
	}
	return keys
}

// Genres returns the aggregated genre groups for the current catalog,
// cached by catalog size.
func (s *Store) Genres() []genre.Group {
	s.mu.RLock()
	labels := song.Labels(s.catalog)
	s.mu.RUnlock()
	return s.aggregator.Groups(labels)
}

// TopGenres returns the displayed parent group names, used to resolve
// "Other" membership in the genre filter.
func (s *Store) TopGenres() []string {
	return genre.TopNames(s.Genres())
}
