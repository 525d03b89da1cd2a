// Package client wires the application together: it owns the view
// state, reacts to push-channel events and exposes the operations the
// display layer calls.
package client

import (
	gosync "sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/hibiki-dev/encore/internal/app/dispatch"
	"github.com/hibiki-dev/encore/internal/app/notify"
	"github.com/hibiki-dev/encore/internal/app/render"
	"github.com/hibiki-dev/encore/internal/app/state"
	"github.com/hibiki-dev/encore/internal/app/sync"
	"github.com/hibiki-dev/encore/internal/app/view"
	"github.com/hibiki-dev/encore/internal/domain/queue"
	"github.com/hibiki-dev/encore/internal/domain/song"
	"github.com/hibiki-dev/encore/internal/infra/prefs"
)

// Options configures the orchestrator.
type Options struct {
	UserID         string
	IsAdmin        bool
	UpNextSort     queue.UpNextSort
	SearchDebounce time.Duration
	ScrollDebounce time.Duration
}

// Client glues the state store, view engine, dispatcher and preference
// store together and implements the sync handler. All mutations funnel
// through here so the display layer stays a pure consumer.
type Client struct {
	store      *state.Store
	engine     *view.Engine
	dispatcher *dispatch.Dispatcher
	prefs      *prefs.Store
	hub        *notify.Hub
	opts       Options

	searchDebounce *view.Debouncer
	scrollDebounce *view.Debouncer

	mu        gosync.Mutex
	viewState view.State
	favorites map[string]struct{}
	hidden    map[string]struct{}
	phase     sync.Phase

	// changed wakes the display layer after any state mutation. It is
	// buffered so handlers never block on a slow consumer.
	changed chan struct{}
}

// New creates the orchestrator. Favorites and hidden sets are read from
// the preference store once; later toggles keep the in-memory mirror and
// the durable store in step.
func New(store *state.Store, engine *view.Engine, dispatcher *dispatch.Dispatcher,
	pstore *prefs.Store, hub *notify.Hub, opts Options) (*Client, error) {

	favorites, err := pstore.Favorites()
	if err != nil {
		return nil, err
	}
	hidden, err := pstore.Hidden()
	if err != nil {
		return nil, err
	}

	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 300 * time.Millisecond
	}
	if opts.ScrollDebounce <= 0 {
		opts.ScrollDebounce = 100 * time.Millisecond
	}

	return &Client{
		store:          store,
		engine:         engine,
		dispatcher:     dispatcher,
		prefs:          pstore,
		hub:            hub,
		opts:           opts,
		searchDebounce: view.NewDebouncer(opts.SearchDebounce),
		scrollDebounce: view.NewDebouncer(opts.ScrollDebounce),
		viewState:      view.NewState(),
		favorites:      favorites,
		hidden:         hidden,
		phase:          sync.PhaseDisconnected,
		changed:        make(chan struct{}, 1),
	}, nil
}

// Changed returns the wake-up channel for the display layer.
func (c *Client) Changed() <-chan struct{} {
	return c.changed
}

func (c *Client) wake() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// HandleSnapshot installs an authoritative snapshot: the mirror is
// replaced, pending intents reconcile against it, and the display wakes.
func (c *Client) HandleSnapshot(snap queue.Snapshot) {
	c.store.ApplySnapshot(snap)
	c.dispatcher.Reconcile(snap)
	c.wake()
}

// HandleVoteUpdate patches one entry's vote counts without replacing the
// mirror.
func (c *Client) HandleVoteUpdate(queueID, upvotes, downvotes int) {
	c.store.UpdateVotes(queueID, upvotes, downvotes)
	c.wake()
}

// HandleArtistImages acknowledges resolved artist imagery. The terminal
// renders no images; the lookup result is logged for completeness.
func (c *Client) HandleArtistImages(images map[string]string) {
	zlog.Debug().Msgf("Received %d artist images", len(images))
}

// HandleNotice surfaces transient server notices as toasts.
func (c *Client) HandleNotice(text string, isError bool) {
	if isError {
		c.hub.Error(text)
	} else {
		c.hub.Info(text)
	}
	c.wake()
}

// HandlePhase records connection phase changes for the status line.
func (c *Client) HandlePhase(p sync.Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
	c.wake()
}

// Phase returns the current connection phase.
func (c *Client) Phase() sync.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// SetCatalog installs a freshly loaded catalog document.
func (c *Client) SetCatalog(songs []song.Song) {
	c.store.ReplaceCatalog(songs)
	c.wake()
}

// SetCatalogError disables browsing with a persistent visible error.
// Queue features keep working without the catalog.
func (c *Client) SetCatalogError(err error) {
	c.store.SetCatalogError(err)
	c.hub.Error("Could not load the song catalog: " + err.Error())
	c.wake()
}

// CatalogError returns the sticky catalog load failure, if any.
func (c *Client) CatalogError() error {
	return c.store.CatalogError()
}

// Search schedules a debounced search update; only the last keystroke in
// a burst recomputes the view.
func (c *Client) Search(query string) {
	c.searchDebounce.Trigger(func() {
		c.mu.Lock()
		c.viewState.SetSearch(query)
		c.mu.Unlock()
		c.wake()
	})
}

// LoadMore schedules a debounced pagination advance.
func (c *Client) LoadMore() {
	c.scrollDebounce.Trigger(func() {
		c.mu.Lock()
		c.viewState.NextPage()
		c.mu.Unlock()
		c.wake()
	})
}

// SetGenres replaces the active genre filter.
func (c *Client) SetGenres(genres []string) {
	c.mu.Lock()
	c.viewState.SetGenres(genres)
	c.mu.Unlock()
	c.wake()
}

// ToggleInstrument flips an instrument predicate.
func (c *Client) ToggleInstrument(name string) {
	c.mu.Lock()
	c.viewState.ToggleInstrument(name)
	c.mu.Unlock()
	c.wake()
}

// SetSort replaces the catalog sort and persists it.
func (c *Client) SetSort(spec view.Spec) {
	c.mu.Lock()
	c.viewState.SetSort(spec)
	c.mu.Unlock()

	if err := c.prefs.Set(prefs.KeyCatalogSort, spec.Primary.String()+","+spec.Secondary.String()); err != nil {
		c.hub.Error("Could not save sort preference")
	}
	c.wake()
}

// ToggleFavorite flips a song's favorite state, synchronously durable.
func (c *Client) ToggleFavorite(s song.Song) {
	key := s.Key()
	nowFav, err := c.prefs.ToggleFavorite(key)
	if err != nil {
		c.hub.Error("Could not save favorite")
		return
	}

	c.mu.Lock()
	if nowFav {
		c.favorites[key] = struct{}{}
	} else {
		delete(c.favorites, key)
	}
	c.mu.Unlock()
	c.wake()
}

// ToggleHidden flips a song's hidden state, synchronously durable.
func (c *Client) ToggleHidden(s song.Song) {
	key := s.Key()
	nowHidden, err := c.prefs.ToggleHidden(key)
	if err != nil {
		c.hub.Error("Could not save hidden state")
		return
	}

	c.mu.Lock()
	if nowHidden {
		c.hidden[key] = struct{}{}
	} else {
		delete(c.hidden, key)
	}
	c.mu.Unlock()
	c.wake()
}

// ViewState returns a copy of the current view state.
func (c *Client) ViewState() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewState
}

// Dispatcher exposes command operations to the display layer.
func (c *Client) Dispatcher() *dispatch.Dispatcher {
	return c.dispatcher
}

// Derive computes the current displayed page.
func (c *Client) Derive() view.Result {
	c.mu.Lock()
	st := c.viewState
	favorites := c.favorites
	hidden := c.hidden
	c.mu.Unlock()

	result := c.engine.Derive(view.Inputs{
		Catalog:   c.store.Catalog(),
		Favorites: favorites,
		Hidden:    hidden,
		Queued:    c.store.QueuedKeys(),
		TopGenres: c.store.TopGenres(),
	}, st)

	c.mu.Lock()
	c.viewState.HasMore = result.HasMore
	c.mu.Unlock()
	return result
}

// Plan derives the full display plan for the current frame.
func (c *Client) Plan() render.Plan {
	result := c.Derive()

	c.mu.Lock()
	favorites := c.favorites
	hidden := c.hidden
	c.mu.Unlock()

	return render.BuildPlan(render.Inputs{
		Songs:      result.Songs,
		Snapshot:   c.store.Queue(),
		Favorites:  favorites,
		Hidden:     hidden,
		UserID:     c.opts.UserID,
		IsAdmin:    c.opts.IsAdmin,
		UpNextSort: c.opts.UpNextSort,
		Pending:    c.dispatcher.PendingFor,
	})
}

// Close stops the debouncers.
func (c *Client) Close() {
	c.searchDebounce.Stop()
	c.scrollDebounce.Stop()
}
