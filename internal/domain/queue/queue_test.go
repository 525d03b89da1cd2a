package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshot_DropsDuplicateSlots(t *testing.T) {
	snap := NewSnapshot([]Entry{
		{ID: 1, Name: "First"},
		{ID: 2, Name: "Second"},
		{ID: 1, Name: "Impostor"},
	}, nil, nil)

	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, "First", snap.Entries[0].Name)
	assert.Equal(t, "Second", snap.Entries[1].Name)
}

func TestSnapshot_NowPlayingAndUpNext(t *testing.T) {
	tests := []struct {
		name         string
		entries      []Entry
		expectNow    bool
		expectUpNext int
	}{
		{name: "empty queue", entries: nil, expectNow: false, expectUpNext: 0},
		{name: "single entry", entries: []Entry{{ID: 1}}, expectNow: true, expectUpNext: 0},
		{name: "several entries", entries: []Entry{{ID: 1}, {ID: 2}, {ID: 3}}, expectNow: true, expectUpNext: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := NewSnapshot(tt.entries, nil, nil)
			now, ok := snap.NowPlaying()
			assert.Equal(t, tt.expectNow, ok)
			if ok {
				assert.Equal(t, tt.entries[0].ID, now.ID)
			}
			assert.Len(t, snap.UpNext(), tt.expectUpNext)
		})
	}
}

func TestEntry_SongKey(t *testing.T) {
	assert.Equal(t, "#7", Entry{SongID: 7, Name: "X", Artist: "Y"}.SongKey())
	assert.Equal(t, "creep|radiohead", Entry{Name: "Creep", Artist: "Radiohead"}.SongKey())
}

func TestSnapshot_ContainsSong(t *testing.T) {
	snap := NewSnapshot([]Entry{{ID: 1, SongID: 7}, {ID: 2, Name: "Creep", Artist: "Radiohead"}}, nil, nil)

	assert.True(t, snap.ContainsSong("#7"))
	assert.True(t, snap.ContainsSong("creep|radiohead"))
	assert.False(t, snap.ContainsSong("#99"))

	e, ok := snap.EntryFor("creep|radiohead")
	assert.True(t, ok)
	assert.Equal(t, 2, e.ID)
}

func TestEntry_CanRemove(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		userID   string
		isAdmin  bool
		expected bool
	}{
		{name: "own entry", entry: Entry{UserID: "u1"}, userID: "u1", expected: true},
		{name: "someone else's entry", entry: Entry{UserID: "u2"}, userID: "u1", expected: false},
		{name: "admin removes anything", entry: Entry{UserID: "u2"}, userID: "u1", isAdmin: true, expected: true},
		{name: "random filler removable by anyone", entry: Entry{UserID: "u2", IsRandom: true}, userID: "u1", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.CanRemove(tt.userID, tt.isAdmin))
		})
	}
}

func TestSortUpNext(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: 1, SongID: 10, RequestedAt: base.Add(2 * time.Minute)},
		{ID: 2, SongID: 20, RequestedAt: base},
		{ID: 3, SongID: 30, RequestedAt: base.Add(time.Minute)},
	}
	favorites := map[string]struct{}{"#30": {}}
	isFav := func(key string) bool { _, ok := favorites[key]; return ok }

	tests := []struct {
		name     string
		mode     UpNextSort
		expected []int
	}{
		{name: "mirror keeps server order", mode: SortMirror, expected: []int{1, 2, 3}},
		{name: "favorites float up, mirror order within", mode: SortFavorites, expected: []int{3, 1, 2}},
		{name: "oldest first", mode: SortOldest, expected: []int{2, 3, 1}},
		{name: "newest first", mode: SortNewest, expected: []int{1, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := SortUpNext(entries, tt.mode, isFav)
			ids := make([]int, len(sorted))
			for i, e := range sorted {
				ids[i] = e.ID
			}
			assert.Equal(t, tt.expected, ids)

			// Input order untouched.
			assert.Equal(t, 1, entries[0].ID)
		})
	}
}

func TestUpNextSort_RoundTrip(t *testing.T) {
	for _, mode := range []UpNextSort{SortMirror, SortFavorites, SortOldest, SortNewest} {
		assert.Equal(t, mode, ParseUpNextSort(mode.String()))
	}
	assert.Equal(t, SortMirror, ParseUpNextSort("bogus"))
}
