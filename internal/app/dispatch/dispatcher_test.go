package dispatch

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hibiki-dev/encore/internal/app/protocol"
	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// recordingSender captures sent commands for inspection.
type recordingSender struct {
	commands []protocol.Command
	err      error
}

func (r *recordingSender) Send(cmd protocol.Command) error {
	if r.err != nil {
		return r.err
	}
	r.commands = append(r.commands, cmd)
	return nil
}

func TestDispatcher_RequestSong(t *testing.T) {
	sender := &recordingSender{}
	d := New(sender, "u1", false)
	s := song.Song{ID: 7, Name: "Creep", Artist: "Radiohead"}

	require.NoError(t, d.RequestSong(s))

	require.Len(t, sender.commands, 1)
	assert.Equal(t, protocol.RequestSong{SongID: 7}, sender.commands[0])

	intent, ok := d.PendingFor("#7")
	require.True(t, ok)
	assert.Equal(t, IntentRequest, intent.Kind)
}

func TestDispatcher_RequestSong_SendFailureAddsNoIntent(t *testing.T) {
	sender := &recordingSender{err: errors.New("not connected")}
	d := New(sender, "u1", false)

	assert.Error(t, d.RequestSong(song.Song{ID: 7}))
	assert.Equal(t, 0, d.PendingCount())
}

func TestDispatcher_UnrequestEntry(t *testing.T) {
	tests := []struct {
		name      string
		entry     queue.Entry
		isAdmin   bool
		expectErr bool
		expected  protocol.Command
	}{
		{
			name:     "own entry uses remove_song",
			entry:    queue.Entry{ID: 3, SongID: 7, UserID: "u1"},
			expected: protocol.RemoveSong{QueueID: 3},
		},
		{
			name:      "someone else's entry rejected",
			entry:     queue.Entry{ID: 3, SongID: 7, UserID: "u2", UserName: "bob"},
			expectErr: true,
		},
		{
			name:     "random filler uses remove_song",
			entry:    queue.Entry{ID: 3, SongID: 7, UserID: "u2", IsRandom: true},
			expected: protocol.RemoveSong{QueueID: 3},
		},
		{
			name:     "admin removing someone else's entry uses force",
			entry:    queue.Entry{ID: 3, SongID: 7, UserID: "u2"},
			isAdmin:  true,
			expected: protocol.ForceRemove{QueueID: 3},
		},
		{
			name:     "admin removing own entry uses remove_song",
			entry:    queue.Entry{ID: 3, SongID: 7, UserID: "u1"},
			isAdmin:  true,
			expected: protocol.RemoveSong{QueueID: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			d := New(sender, "u1", tt.isAdmin)

			err := d.UnrequestEntry(tt.entry)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Empty(t, sender.commands)
				return
			}
			require.NoError(t, err)
			require.Len(t, sender.commands, 1)
			assert.Equal(t, tt.expected, sender.commands[0])

			intent, ok := d.PendingFor(tt.entry.SongKey())
			require.True(t, ok)
			assert.Equal(t, IntentRemove, intent.Kind)
		})
	}
}

func TestDispatcher_Vote(t *testing.T) {
	sender := &recordingSender{}
	d := New(sender, "u1", false)

	require.NoError(t, d.Vote(3, true))
	require.NoError(t, d.Vote(3, false))

	assert.Equal(t, protocol.Vote{QueueID: 3, VoteType: "up"}, sender.commands[0])
	assert.Equal(t, protocol.Vote{QueueID: 3, VoteType: "down"}, sender.commands[1])
	// Votes are fire-and-forget, no optimistic intent.
	assert.Equal(t, 0, d.PendingCount())
}

func TestDispatcher_RequestAll_SingleBatch(t *testing.T) {
	sender := &recordingSender{}
	d := New(sender, "u1", false)

	songs := []song.Song{{ID: 1}, {ID: 2}, {ID: 3}}
	require.NoError(t, d.RequestAll(songs))

	require.Len(t, sender.commands, 1)
	assert.Equal(t, protocol.AddMultiple{SongIDs: []int{1, 2, 3}}, sender.commands[0])
	assert.Equal(t, 3, d.PendingCount())

	require.NoError(t, d.RequestAll(nil))
	assert.Len(t, sender.commands, 1)
}

func TestDispatcher_RemoveAll_SkipsForbiddenEntries(t *testing.T) {
	sender := &recordingSender{}
	d := New(sender, "u1", false)

	entries := []queue.Entry{
		{ID: 1, SongID: 10, UserID: "u1"},
		{ID: 2, SongID: 20, UserID: "u2"}, // not removable
		{ID: 3, SongID: 30, UserID: "u2", IsRandom: true},
	}
	require.NoError(t, d.RemoveAll(entries))

	require.Len(t, sender.commands, 1)
	assert.Equal(t, protocol.RemoveMultiple{QueueIDs: []int{1, 3}}, sender.commands[0])
	assert.Equal(t, 2, d.PendingCount())
}

func TestDispatcher_AdminCommands(t *testing.T) {
	tests := []struct {
		name string
		call func(d *Dispatcher) error
	}{
		{name: "mark played", call: func(d *Dispatcher) error { return d.MarkPlayed(1) }},
		{name: "clear all", call: func(d *Dispatcher) error { return d.ClearAll() }},
		{name: "clear random", call: func(d *Dispatcher) error { return d.ClearRandom() }},
		{name: "clear by user", call: func(d *Dispatcher) error { return d.ClearByUser("u2") }},
		{name: "sort queue", call: func(d *Dispatcher) error { return d.SortQueue("upvotes") }},
		{name: "reorder queue", call: func(d *Dispatcher) error { return d.ReorderQueue([]int{2, 1}) }},
		{name: "upload songs", call: func(d *Dispatcher) error { return d.UploadSongs(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain := New(&recordingSender{}, "u1", false)
			assert.Error(t, tt.call(plain))

			adminSender := &recordingSender{}
			admin := New(adminSender, "u1", true)
			assert.NoError(t, tt.call(admin))
			assert.Len(t, adminSender.commands, 1)
		})
	}
}

func TestDispatcher_Reconcile(t *testing.T) {
	sender := &recordingSender{}
	d := New(sender, "u1", false)

	require.NoError(t, d.RequestSong(song.Song{ID: 10}))
	require.NoError(t, d.RequestSong(song.Song{ID: 20}))
	require.NoError(t, d.UnrequestEntry(queue.Entry{ID: 5, SongID: 30, UserID: "u1"}))
	assert.Equal(t, 3, d.PendingCount())

	// Snapshot confirms the request for #10 (it appears) and the removal
	// of #30 (it is gone); the request for #20 stays pending.
	snap := queue.NewSnapshot([]queue.Entry{{ID: 1, SongID: 10}}, nil, nil)
	d.Reconcile(snap)

	assert.Equal(t, 1, d.PendingCount())
	_, ok := d.PendingFor("#20")
	assert.True(t, ok)
}

func TestDispatcher_ReconcileSweepsExpired(t *testing.T) {
	sender := &recordingSender{}
	d := New(sender, "u1", false)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	require.NoError(t, d.RequestSong(song.Song{ID: 10}))

	// Not yet confirmed, not yet expired.
	d.Reconcile(queue.Snapshot{})
	assert.Equal(t, 1, d.PendingCount())

	now = now.Add(DefaultIntentTTL + time.Second)
	d.Reconcile(queue.Snapshot{})
	assert.Equal(t, 0, d.PendingCount())
}

func TestDispatcher_PendingForIgnoresExpired(t *testing.T) {
	sender := &recordingSender{}
	d := New(sender, "u1", false)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	require.NoError(t, d.RequestSong(song.Song{ID: 10}))
	_, ok := d.PendingFor("#10")
	assert.True(t, ok)

	now = now.Add(DefaultIntentTTL + time.Second)
	_, ok = d.PendingFor("#10")
	assert.False(t, ok)
}
