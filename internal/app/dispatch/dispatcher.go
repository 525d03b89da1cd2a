package dispatch

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/hibiki-dev/encore/internal/app/protocol"
	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/domain/song"
)

// Sender forwards encoded commands to the push channel.
type Sender interface {
	Send(cmd protocol.Command) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(cmd protocol.Command) error

// Send implements Sender.
func (f SenderFunc) Send(cmd protocol.Command) error { return f(cmd) }

// Dispatcher validates locally-knowable preconditions, sends commands
// and keeps the pending-intent list. Precondition checks gate UI
// controls only; the server re-validates everything.
type Dispatcher struct {
	sender  Sender
	userID  string
	isAdmin bool
	ttl     time.Duration

	mu      sync.Mutex
	pending []Intent

	now func() time.Time
}

// New creates a dispatcher for the given user identity.
func New(sender Sender, userID string, isAdmin bool) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		userID:  userID,
		isAdmin: isAdmin,
		ttl:     DefaultIntentTTL,
		now:     time.Now,
	}
}

// RequestSong queues a song request with an optimistic pending intent.
func (d *Dispatcher) RequestSong(s song.Song) error {
	if err := d.sender.Send(protocol.RequestSong{SongID: s.ID}); err != nil {
		return err
	}
	d.addIntent(IntentRequest, s.Key(), 0)
	return nil
}

// UnrequestEntry removes a queue entry. Only the original requester, a
// random-filler entry or an admin may un-request; admins removing
// someone else's entry use the force command.
func (d *Dispatcher) UnrequestEntry(e queue.Entry) error {
	if !e.CanRemove(d.userID, d.isAdmin) {
		return errors.Newf("entry %d belongs to %s", e.ID, e.UserName)
	}

	var cmd protocol.Command = protocol.RemoveSong{QueueID: e.ID}
	if d.isAdmin && e.UserID != d.userID && !e.IsRandom {
		cmd = protocol.ForceRemove{QueueID: e.ID}
	}
	if err := d.sender.Send(cmd); err != nil {
		return err
	}
	d.addIntent(IntentRemove, e.SongKey(), e.ID)
	return nil
}

// Vote casts an up or down vote on a queue entry.
func (d *Dispatcher) Vote(queueID int, up bool) error {
	voteType := "down"
	if up {
		voteType = "up"
	}
	return d.sender.Send(protocol.Vote{QueueID: queueID, VoteType: voteType})
}

// RequestAll batches multiple song requests into a single command.
func (d *Dispatcher) RequestAll(songs []song.Song) error {
	if len(songs) == 0 {
		return nil
	}
	ids := make([]int, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	if err := d.sender.Send(protocol.AddMultiple{SongIDs: ids}); err != nil {
		return err
	}
	for _, s := range songs {
		d.addIntent(IntentRequest, s.Key(), 0)
	}
	return nil
}

// RemoveAll batches removal of every entry the user may remove into a
// single command; entries failing the precondition are skipped.
func (d *Dispatcher) RemoveAll(entries []queue.Entry) error {
	ids := make([]int, 0, len(entries))
	removable := make([]queue.Entry, 0, len(entries))
	for _, e := range entries {
		if e.CanRemove(d.userID, d.isAdmin) {
			ids = append(ids, e.ID)
			removable = append(removable, e)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := d.sender.Send(protocol.RemoveMultiple{QueueIDs: ids}); err != nil {
		return err
	}
	for _, e := range removable {
		d.addIntent(IntentRemove, e.SongKey(), e.ID)
	}
	return nil
}

// MarkPlayed advances the queue past an entry (admin).
func (d *Dispatcher) MarkPlayed(queueID int) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	return d.sender.Send(protocol.NowPlaying{QueueID: queueID})
}

// ClearAll empties the queue (admin).
func (d *Dispatcher) ClearAll() error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	return d.sender.Send(protocol.ClearAll{})
}

// ClearRandom removes all random-filler entries (admin).
func (d *Dispatcher) ClearRandom() error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	return d.sender.Send(protocol.ClearRandom{})
}

// ClearByUser removes all entries requested by one user (admin).
func (d *Dispatcher) ClearByUser(userID string) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	return d.sender.Send(protocol.ClearByUser{UserID: userID})
}

// SortQueue asks the server to re-sort the queue (admin).
func (d *Dispatcher) SortQueue(sortType string) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	return d.sender.Send(protocol.SortQueue{SortType: sortType})
}

// ReorderQueue replaces the queue ordering (admin).
func (d *Dispatcher) ReorderQueue(queueIDs []int) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	return d.sender.Send(protocol.ReorderQueue{QueueIDs: queueIDs})
}

// UploadSongs replaces the server-side catalog (admin).
func (d *Dispatcher) UploadSongs(songs []song.Song) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	wire := make([]protocol.WireSong, len(songs))
	for i, s := range songs {
		wire[i] = protocol.FromSong(s)
	}
	return d.sender.Send(protocol.UploadSongs{Songs: wire})
}

// LookupArtistImages asks the server to resolve artist imagery.
func (d *Dispatcher) LookupArtistImages(artists []string) error {
	return d.sender.Send(protocol.LookupArtistImages{Artists: artists})
}

func (d *Dispatcher) requireAdmin() error {
	if !d.isAdmin {
		return errors.New("admin privileges required")
	}
	return nil
}

func (d *Dispatcher) addIntent(kind IntentKind, songKey string, queueID int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, Intent{
		ID:       uuid.New().String(),
		Kind:     kind,
		SongKey:  songKey,
		QueueID:  queueID,
		Deadline: d.now().Add(d.ttl),
	})
}

// Reconcile clears every intent the snapshot confirms and sweeps expired
// ones. A request intent is confirmed when its song appears in the
// snapshot; a remove intent when its song is gone.
func (d *Dispatcher) Reconcile(snap queue.Snapshot) {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.pending[:0]
	for _, in := range d.pending {
		if !in.Deadline.After(now) {
			continue
		}
		confirmed := snap.ContainsSong(in.SongKey)
		if in.Kind == IntentRemove {
			confirmed = !confirmed
		}
		if confirmed {
			continue
		}
		kept = append(kept, in)
	}
	d.pending = kept
}

// PendingFor returns the newest unexpired intent for a song key, used by
// the render layer for optimistic button state.
func (d *Dispatcher) PendingFor(songKey string) (Intent, bool) {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.pending) - 1; i >= 0; i-- {
		in := d.pending[i]
		if in.SongKey == songKey && in.Deadline.After(now) {
			return in, true
		}
	}
	return Intent{}, false
}

// PendingCount returns the number of in-flight intents.
func (d *Dispatcher) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
