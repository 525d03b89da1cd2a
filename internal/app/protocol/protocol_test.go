package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		expected map[string]any
	}{
		{
			name: "join carries identity",
			cmd:  Join{UserID: "u1", UserName: "alice", UserAvatar: "🐰", IsAdmin: true},
			expected: map[string]any{
				"action": "join", "user_id": "u1", "user_name": "alice",
				"user_avatar": "🐰", "is_admin": true,
			},
		},
		{
			name:     "request song",
			cmd:      RequestSong{SongID: 7},
			expected: map[string]any{"action": "request_song", "song_id": float64(7)},
		},
		{
			name:     "vote",
			cmd:      Vote{QueueID: 3, VoteType: "up"},
			expected: map[string]any{"action": "vote", "queue_id": float64(3), "vote_type": "up"},
		},
		{
			name:     "clear all has only the action tag",
			cmd:      ClearAll{},
			expected: map[string]any{"action": "clearAll"},
		},
		{
			name: "add multiple batches ids",
			cmd:  AddMultiple{SongIDs: []int{1, 2, 3}},
			expected: map[string]any{
				"action": "addMultiple", "song_ids": []any{float64(1), float64(2), float64(3)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeCommand(tt.cmd)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, msg Message)
	}{
		{
			name: "state snapshot",
			raw: `{"action":"state","data":{"queue":[{"id":1,"song_id":7,"name":"Creep","artist":"Radiohead",
				"upvotes":2,"downvotes":1,"requested_at":"2026-03-01 12:00:00","user_id":"u1","user_name":"alice"}],
				"history":[{"name":"One","artist":"Metallica"}]}}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(StateMessage)
				require.True(t, ok)
				snap := m.Data.Snapshot()
				require.Len(t, snap.Entries, 1)
				assert.Equal(t, 1, snap.Entries[0].ID)
				assert.Equal(t, 2, snap.Entries[0].Upvotes)
				assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), snap.Entries[0].RequestedAt)
				require.Len(t, snap.History, 1)
				assert.Equal(t, "One", snap.History[0].Name)
			},
		},
		{
			name: "error",
			raw:  `{"action":"error","message":"song already queued"}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(ErrorMessage)
				require.True(t, ok)
				assert.Equal(t, "song already queued", m.Message)
			},
		},
		{
			name: "toast aliases notice",
			raw:  `{"action":"toast","message":"queue cleared"}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(NoticeMessage)
				require.True(t, ok)
				assert.Equal(t, "queue cleared", m.Message)
			},
		},
		{
			name: "vote update with float numerics",
			raw:  `{"action":"vote_update","queue_id":3,"upvotes":5.0,"downvotes":1}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(VoteUpdateMessage)
				require.True(t, ok)
				assert.Equal(t, 3, m.QueueID)
				assert.Equal(t, 5, m.Upvotes)
				assert.Equal(t, 1, m.Downvotes)
			},
		},
		{
			name: "artist images",
			raw:  `{"action":"artist_images","images":{"Radiohead":"https://img/radiohead.jpg"}}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(ArtistImagesMessage)
				require.True(t, ok)
				assert.Equal(t, "https://img/radiohead.jpg", m.Images["Radiohead"])
			},
		},
		{
			name: "server shutdown",
			raw:  `{"action":"server_shutdown"}`,
			check: func(t *testing.T, msg Message) {
				_, ok := msg.(ShutdownMessage)
				assert.True(t, ok)
			},
		},
		{
			name: "unknown action preserved",
			raw:  `{"action":"confetti","amount":9000}`,
			check: func(t *testing.T, msg Message) {
				m, ok := msg.(UnknownMessage)
				require.True(t, ok)
				assert.Equal(t, "confetti", m.ActionTag)
				assert.Equal(t, float64(9000), m.Raw["amount"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.raw))
			require.NoError(t, err)
			tt.check(t, msg)
		})
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	_, err := DecodeMessage([]byte(`{not json`))
	assert.Error(t, err)
}

func TestWireEntry_RequestedAtFormats(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected time.Time
	}{
		{name: "sqlite format", raw: "2026-03-01 12:00:00", expected: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{name: "rfc3339", raw: "2026-03-01T12:00:00Z", expected: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{name: "unparseable degrades to zero", raw: "yesterday-ish", expected: time.Time{}},
		{name: "empty degrades to zero", raw: "", expected: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := WireEntry{RequestedAt: tt.raw}.ToEntry()
			assert.True(t, e.RequestedAt.Equal(tt.expected))
		})
	}
}

func TestStateData_SnapshotDropsDuplicateSlots(t *testing.T) {
	data := StateData{Queue: []WireEntry{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}, {ID: 2}}}
	snap := data.Snapshot()

	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, "A", snap.Entries[0].Name)
}

func TestWireSong_RoundTrip(t *testing.T) {
	w := WireSong{ID: 7, Name: "Creep", Artist: "Radiohead", SongLength: 238, Year: 1992}
	s := w.ToSong()
	assert.Equal(t, 3*time.Minute+58*time.Second, s.Length)
	assert.Equal(t, w, FromSong(s))
}
