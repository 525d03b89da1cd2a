// Package render turns derived state into a display plan: row models
// with badge and button states, the now-playing slot and the up-next
// list. Building a plan never mutates its inputs, so the same state
// always yields the same plan.
package render

import (
	"github.com/hibiki-dev/encore/internal/app/dispatch"
	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// Row is one catalog song with its display state.
type Row struct {
	Song       song.Song
	Favorited  bool
	Hidden     bool
	Queued     bool // Effective request-button state, optimistic overrides applied
	Optimistic bool // Queued state comes from an unconfirmed intent
	QueueID    int  // Entry ID when queued via a confirmed snapshot, else 0
}

// QueueRow is one queue entry with its display state.
type QueueRow struct {
	Entry     queue.Entry
	Favorited bool
	CanRemove bool
}

// Plan is the complete display model for one frame.
type Plan struct {
	Rows       []Row
	Empty      bool // Filtered set is empty: render the "no results" placeholder
	NowPlaying *QueueRow
	UpNext     []QueueRow
	History    []queue.Played
}

// Inputs bundles everything a plan is derived from.
type Inputs struct {
	Songs      []song.Song    // Displayed page from the view engine
	Snapshot   queue.Snapshot // Authoritative queue mirror
	Favorites  map[string]struct{}
	Hidden     map[string]struct{}
	UserID     string
	IsAdmin    bool
	UpNextSort queue.UpNextSort
	// Pending resolves the newest in-flight intent for a song key; nil
	// disables optimistic overrides.
	Pending func(songKey string) (dispatch.Intent, bool)
}

// BuildPlan derives the display plan. Now playing is always queue
// position 0; local up-next sorting reorders positions 1..n only and
// never touches the authoritative order.
func BuildPlan(in Inputs) Plan {
	plan := Plan{
		Rows:    make([]Row, len(in.Songs)),
		Empty:   len(in.Songs) == 0,
		History: in.Snapshot.History,
	}

	for i, s := range in.Songs {
		key := s.Key()
		row := Row{Song: s}
		_, row.Favorited = in.Favorites[key]
		_, row.Hidden = in.Hidden[key]

		if e, ok := in.Snapshot.EntryFor(key); ok {
			row.Queued = true
			row.QueueID = e.ID
		}
		if in.Pending != nil {
			if intent, ok := in.Pending(key); ok {
				// Optimistic flip: the button state follows the intent
				// until the next snapshot settles it.
				row.Queued = intent.Kind == dispatch.IntentRequest
				row.Optimistic = true
			}
		}
		plan.Rows[i] = row
	}

	if now, ok := in.Snapshot.NowPlaying(); ok {
		row := queueRow(now, in)
		plan.NowPlaying = &row
	}

	isFav := func(key string) bool {
		_, ok := in.Favorites[key]
		return ok
	}
	for _, e := range queue.SortUpNext(in.Snapshot.UpNext(), in.UpNextSort, isFav) {
		plan.UpNext = append(plan.UpNext, queueRow(e, in))
	}

	return plan
}

func queueRow(e queue.Entry, in Inputs) QueueRow {
	_, fav := in.Favorites[e.SongKey()]
	return QueueRow{
		Entry:     e,
		Favorited: fav,
		CanRemove: e.CanRemove(in.UserID, in.IsAdmin),
	}
}
