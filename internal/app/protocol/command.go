// Package protocol defines the wire envelopes exchanged with the queue
// server: outgoing command messages and the tagged union of incoming
// push messages. Bodies are JSON text, one message per logical event.
package protocol

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// Command is an outgoing request envelope. Delivery of a command never
// implies success; only a subsequent state snapshot confirms it.
type Command interface {
	Action() string
}

// Join announces the client identity right after the connection opens.
type Join struct {
	UserID     string `mapstructure:"user_id"`
	UserName   string `mapstructure:"user_name"`
	UserAvatar string `mapstructure:"user_avatar"`
	IsAdmin    bool   `mapstructure:"is_admin"`
}

func (Join) Action() string { return "join" }

// RequestSong adds a song to the queue.
type RequestSong struct {
	SongID int `mapstructure:"song_id"`
}

func (RequestSong) Action() string { return "request_song" }

// RemoveSong un-requests a queue entry.
type RemoveSong struct {
	QueueID int `mapstructure:"queue_id"`
}

func (RemoveSong) Action() string { return "remove_song" }

// ForceRemove removes any queue entry regardless of owner (admin).
type ForceRemove struct {
	QueueID int `mapstructure:"queue_id"`
}

func (ForceRemove) Action() string { return "forceRemove" }

// NowPlaying marks a queue entry as played and advances the queue (admin).
type NowPlaying struct {
	QueueID int `mapstructure:"queue_id"`
}

func (NowPlaying) Action() string { return "nowPlaying" }

// Vote casts an up or down vote on a queue entry.
type Vote struct {
	QueueID  int    `mapstructure:"queue_id"`
	VoteType string `mapstructure:"vote_type"` // "up" or "down"
}

func (Vote) Action() string { return "vote" }

// ReorderQueue replaces the queue ordering with the given entry IDs (admin).
type ReorderQueue struct {
	QueueIDs []int `mapstructure:"queue_ids"`
}

func (ReorderQueue) Action() string { return "reorder_queue" }

// ClearAll empties the whole queue (admin).
type ClearAll struct{}

func (ClearAll) Action() string { return "clearAll" }

// ClearRandom removes all random-filler entries (admin).
type ClearRandom struct{}

func (ClearRandom) Action() string { return "clearRandom" }

// ClearByUser removes all entries requested by one user (admin).
type ClearByUser struct {
	UserID string `mapstructure:"user_id"`
}

func (ClearByUser) Action() string { return "clearByUser" }

// AddMultiple requests several songs in one command. Batch operations
// are always sent as a single envelope, never as N singles.
type AddMultiple struct {
	SongIDs []int `mapstructure:"song_ids"`
}

func (AddMultiple) Action() string { return "addMultiple" }

// RemoveMultiple removes several queue entries in one command.
type RemoveMultiple struct {
	QueueIDs []int `mapstructure:"queue_ids"`
}

func (RemoveMultiple) Action() string { return "removeMultiple" }

// SortQueue asks the server to re-sort the queue (admin).
type SortQueue struct {
	SortType string `mapstructure:"sort_type"` // "oldest", "newest", "upvotes", "random"
}

func (SortQueue) Action() string { return "sort_queue" }

// UploadSongs replaces the server-side catalog (admin).
type UploadSongs struct {
	Songs []WireSong `mapstructure:"songs"`
}

func (UploadSongs) Action() string { return "upload_songs" }

// LookupArtistImages asks the server to resolve artist imagery.
type LookupArtistImages struct {
	Artists []string `mapstructure:"artists"`
}

func (LookupArtistImages) Action() string { return "lookup_artist_images" }

// EncodeCommand serializes a command into its wire envelope with the
// action tag merged into the payload.
func EncodeCommand(c Command) ([]byte, error) {
	payload := map[string]any{}
	if err := mapstructure.Decode(c, &payload); err != nil {
		return nil, errors.Wrapf(err, "failed to flatten %s command", c.Action())
	}
	payload["action"] = c.Action()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s command", c.Action())
	}
	return data, nil
}
