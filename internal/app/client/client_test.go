package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hibiki-dev/encore/internal/app/dispatch"
	"github.com/hibiki-dev/encore/internal/app/filter"
	"github.com/hibiki-dev/encore/internal/app/notify"
	"github.com/hibiki-dev/encore/internal/app/protocol"
	"github.com/hibiki-dev/encore/internal/app/state"
	"github.com/hibiki-dev/encore/internal/app/sync"
	"github.com/hibiki-dev/encore/internal/app/view"
	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/domain/song"
	"github.com/hibiki-dev/encore/internal/infra/prefs"
)

// nullSender swallows all commands.
type nullSender struct{}

func (nullSender) Send(protocol.Command) error { return nil }

func newTestClient(t *testing.T) (*Client, *dispatch.Dispatcher, *state.Store) {
	t.Helper()

	pstore, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pstore.Close() })

	store := state.New()
	dispatcher := dispatch.New(nullSender{}, "u1", false)
	hub := notify.NewHub()

	c, err := New(store, view.NewEngine(filter.Default(), 10), dispatcher, pstore, hub, Options{
		UserID:         "u1",
		SearchDebounce: 5 * time.Millisecond,
		ScrollDebounce: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, dispatcher, store
}

func drainChanged(c *Client) {
	select {
	case <-c.Changed():
	default:
	}
}

func TestClient_HandleSnapshotWakesAndReconciles(t *testing.T) {
	c, dispatcher, store := newTestClient(t)
	drainChanged(c)

	require.NoError(t, dispatcher.RequestSong(song.Song{ID: 7}))
	assert.Equal(t, 1, dispatcher.PendingCount())

	snap := queue.NewSnapshot([]queue.Entry{{ID: 1, SongID: 7}}, nil, nil)
	c.HandleSnapshot(snap)

	select {
	case <-c.Changed():
	case <-time.After(time.Second):
		t.Fatal("snapshot did not wake the display")
	}
	assert.Equal(t, 0, dispatcher.PendingCount())
	assert.Equal(t, snap, store.Queue())
}

func TestClient_HandleVoteUpdate(t *testing.T) {
	c, _, store := newTestClient(t)
	c.HandleSnapshot(queue.NewSnapshot([]queue.Entry{{ID: 1}}, nil, nil))

	c.HandleVoteUpdate(1, 4, 2)
	assert.Equal(t, 4, store.Queue().Entries[0].Upvotes)
	assert.Equal(t, 2, store.Queue().Entries[0].Downvotes)
}

func TestClient_HandlePhase(t *testing.T) {
	c, _, _ := newTestClient(t)
	assert.Equal(t, sync.PhaseDisconnected, c.Phase())

	c.HandlePhase(sync.PhaseConnected)
	assert.Equal(t, sync.PhaseConnected, c.Phase())
}

func TestClient_SearchDebounced(t *testing.T) {
	c, _, _ := newTestClient(t)

	c.Search("cre")
	c.Search("creep")
	// Only the settled value lands in the view state.
	assert.Eventually(t, func() bool { return c.ViewState().Search == "creep" },
		time.Second, 5*time.Millisecond)
}

func TestClient_LoadMoreAdvancesPage(t *testing.T) {
	c, _, _ := newTestClient(t)

	raw := make([]song.Song, 25)
	for i := range raw {
		raw[i] = song.Song{Name: "Song " + string(rune('a'+i)), Artist: "Band " + string(rune('a'+i))}
	}
	c.SetCatalog(raw)

	r := c.Derive()
	assert.Equal(t, 25, r.Total)
	assert.Len(t, r.Songs, 10)
	assert.True(t, c.ViewState().HasMore)

	c.LoadMore()
	assert.Eventually(t, func() bool { return c.ViewState().Page == 1 },
		time.Second, 5*time.Millisecond)

	r = c.Derive()
	assert.Len(t, r.Songs, 20)
}

func TestClient_ToggleFavoriteReflectedInPlan(t *testing.T) {
	c, _, _ := newTestClient(t)
	s := song.Song{Name: "Creep", Artist: "Radiohead"}
	c.SetCatalog([]song.Song{s})

	c.ToggleFavorite(s)
	plan := c.Plan()
	require.Len(t, plan.Rows, 1)
	assert.True(t, plan.Rows[0].Favorited)

	c.ToggleFavorite(s)
	plan = c.Plan()
	assert.False(t, plan.Rows[0].Favorited)
}

func TestClient_ToggleHiddenRemovesFromList(t *testing.T) {
	c, _, _ := newTestClient(t)
	s := song.Song{Name: "Creep", Artist: "Radiohead"}
	c.SetCatalog([]song.Song{s, {Name: "One", Artist: "Metallica"}})

	c.ToggleHidden(s)
	plan := c.Plan()
	require.Len(t, plan.Rows, 1)
	assert.Equal(t, "One", plan.Rows[0].Song.Name)
}

func TestClient_CatalogError(t *testing.T) {
	c, _, _ := newTestClient(t)
	assert.NoError(t, c.CatalogError())

	c.SetCatalogError(assert.AnError)
	assert.Error(t, c.CatalogError())

	// A later successful load clears the error.
	c.SetCatalog([]song.Song{{Name: "Creep", Artist: "Radiohead"}})
	assert.NoError(t, c.CatalogError())
}

func TestClient_OptimisticPlanState(t *testing.T) {
	c, dispatcher, _ := newTestClient(t)
	s := song.Song{ID: 7, Name: "Creep", Artist: "Radiohead"}
	c.SetCatalog([]song.Song{s})

	require.NoError(t, dispatcher.RequestSong(s))
	plan := c.Plan()
	require.Len(t, plan.Rows, 1)
	assert.True(t, plan.Rows[0].Queued)
	assert.True(t, plan.Rows[0].Optimistic)

	// The confirming snapshot settles the state.
	c.HandleSnapshot(queue.NewSnapshot([]queue.Entry{{ID: 1, SongID: 7}}, nil, nil))
	plan = c.Plan()
	assert.True(t, plan.Rows[0].Queued)
	assert.False(t, plan.Rows[0].Optimistic)
}
