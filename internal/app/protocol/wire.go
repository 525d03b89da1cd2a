package protocol

import (
	"time"

	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// WireSong is a catalog record as serialized on the wire.
type WireSong struct {
	ID          int    `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Artist      string `json:"artist" mapstructure:"artist"`
	Album       string `json:"album" mapstructure:"album"`
	Genre       string `json:"genre" mapstructure:"genre"`
	Charter     string `json:"charter" mapstructure:"charter"`
	Year        int    `json:"year" mapstructure:"year"`
	SongLength  int    `json:"songlength" mapstructure:"songlength"` // Seconds
	Instruments string `json:"instruments" mapstructure:"instruments"`
}

// ToSong converts the wire record into the raw domain song. The result
// still needs to pass through catalog normalization.
func (w WireSong) ToSong() song.Song {
	return song.Song{
		ID:          w.ID,
		Name:        w.Name,
		Artist:      w.Artist,
		Album:       w.Album,
		Genre:       w.Genre,
		Charter:     w.Charter,
		Year:        w.Year,
		Length:      time.Duration(w.SongLength) * time.Second,
		Instruments: w.Instruments,
	}
}

// FromSong converts a domain song into its wire form, used by the admin
// catalog upload command.
func FromSong(s song.Song) WireSong {
	return WireSong{
		ID:          s.ID,
		Name:        s.Name,
		Artist:      s.Artist,
		Album:       s.Album,
		Genre:       s.Genre,
		Charter:     s.Charter,
		Year:        s.Year,
		SongLength:  int(s.Length.Seconds()),
		Instruments: s.Instruments,
	}
}

// WireEntry is a queue row as serialized on the wire.
type WireEntry struct {
	ID          int    `json:"id" mapstructure:"id"`
	SongID      int    `json:"song_id" mapstructure:"song_id"`
	Name        string `json:"name" mapstructure:"name"`
	Artist      string `json:"artist" mapstructure:"artist"`
	Upvotes     int    `json:"upvotes" mapstructure:"upvotes"`
	Downvotes   int    `json:"downvotes" mapstructure:"downvotes"`
	RequestedAt string `json:"requested_at" mapstructure:"requested_at"`
	UserID      string `json:"user_id" mapstructure:"user_id"`
	UserName    string `json:"user_name" mapstructure:"user_name"`
	UserAvatar  string `json:"user_avatar" mapstructure:"user_avatar"`
	IsRandom    bool   `json:"is_random" mapstructure:"is_random"`
}

// requestedAtLayouts are the timestamp formats the server is known to
// emit (SQLite CURRENT_TIMESTAMP and RFC3339).
var requestedAtLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ToEntry converts the wire row into the domain entry. An unparseable
// timestamp degrades to the zero time rather than failing the snapshot.
func (w WireEntry) ToEntry() queue.Entry {
	var at time.Time
	for _, layout := range requestedAtLayouts {
		if t, err := time.Parse(layout, w.RequestedAt); err == nil {
			at = t
			break
		}
	}
	return queue.Entry{
		ID:          w.ID,
		SongID:      w.SongID,
		Name:        w.Name,
		Artist:      w.Artist,
		Upvotes:     w.Upvotes,
		Downvotes:   w.Downvotes,
		RequestedAt: at,
		UserID:      w.UserID,
		UserName:    w.UserName,
		UserAvatar:  w.UserAvatar,
		IsRandom:    w.IsRandom,
	}
}

// WirePlayed is a history row as serialized on the wire.
type WirePlayed struct {
	Name   string `json:"name" mapstructure:"name"`
	Artist string `json:"artist" mapstructure:"artist"`
}

// StateData is the payload of a full-state snapshot push.
type StateData struct {
	Songs   []WireSong   `json:"songs" mapstructure:"songs"`
	Queue   []WireEntry  `json:"queue" mapstructure:"queue"`
	History []WirePlayed `json:"history" mapstructure:"history"`
}

// Snapshot converts the wire payload into the domain snapshot, dropping
// duplicate queue slots.
func (d StateData) Snapshot() queue.Snapshot {
	entries := make([]queue.Entry, len(d.Queue))
	for i, w := range d.Queue {
		entries[i] = w.ToEntry()
	}

	var songs []song.Song
	if len(d.Songs) > 0 {
		songs = make([]song.Song, len(d.Songs))
		for i, w := range d.Songs {
			songs[i] = w.ToSong()
		}
	}

	history := make([]queue.Played, len(d.History))
	for i, w := range d.History {
		history[i] = queue.Played{Name: w.Name, Artist: w.Artist}
	}

	return queue.NewSnapshot(entries, songs, history)
}
