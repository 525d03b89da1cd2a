// Package queue provides the client-side mirror of the server's request queue.
package queue

import (
	"time"

	"github.com/hibiki-dev/encore/internal/domain/song"
)

// Entry is a single queued request. Entries are owned exclusively by the
// server; the client holds a read-mostly mirror replaced on every state
// push.
type Entry struct {
	ID          int       // Queue slot ID, unique per active queue
	SongID      int       // Server-assigned song ID
	Name        string    // Song title
	Artist      string    // Artist name
	Upvotes     int
	Downvotes   int
	RequestedAt time.Time
	UserID      string    // Requester ID
	UserName    string    // Requester display name
	UserAvatar  string    // Requester avatar
	IsRandom    bool      // Entry was added by the random filler, anyone may remove it
}

// SongKey returns the identity key of the queued song, matching
// song.Song.Key for catalog correlation.
func (e Entry) SongKey() string {
	if e.SongID != 0 {
		return song.Song{ID: e.SongID}.Key()
	}
	return song.CompositeKey(e.Name, e.Artist)
}

// Played is a history record of a finished song.
type Played struct {
	Name   string
	Artist string
}

// Snapshot is a complete authoritative queue state push. It fully
// replaces the local mirror; the client never patches it.
type Snapshot struct {
	Entries []Entry
	Songs   []song.Song // Full catalog when the server includes it, else nil
	History []Played
}

// NewSnapshot builds a snapshot from raw entries, dropping any entry
// that claims an already-seen queue slot. The first claim wins.
func NewSnapshot(entries []Entry, songs []song.Song, history []Played) Snapshot {
	unique := make([]Entry, 0, len(entries))
	seen := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		unique = append(unique, e)
	}
	return Snapshot{Entries: unique, Songs: songs, History: history}
}

// NowPlaying returns the entry at queue position 0, or false when the
// queue is empty.
func (s Snapshot) NowPlaying() (Entry, bool) {
	if len(s.Entries) == 0 {
		return Entry{}, false
	}
	return s.Entries[0], true
}

// UpNext returns the entries after position 0 in mirror order.
func (s Snapshot) UpNext() []Entry {
	if len(s.Entries) <= 1 {
		return nil
	}
	return s.Entries[1:]
}

// ContainsSong reports whether any entry references the given song key.
func (s Snapshot) ContainsSong(key string) bool {
	for _, e := range s.Entries {
		if e.SongKey() == key {
			return true
		}
	}
	return false
}

// EntryFor returns the first entry referencing the given song key.
func (s Snapshot) EntryFor(key string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.SongKey() == key {
			return e, true
		}
	}
	return Entry{}, false
}

// CanRemove reports whether the given user may un-request the entry:
// the original requester, anyone for random-filler entries, or an admin.
// This gates the UI control only; the server re-validates.
func (e Entry) CanRemove(userID string, isAdmin bool) bool {
	return isAdmin || e.IsRandom || e.UserID == userID
}
