// Package tui renders the client in the terminal: catalog browser,
// shared queue and play history, driven by the application orchestrator.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hibiki-dev/encore/internal/app/client"
	"github.com/hibiki-dev/encore/internal/app/notify"
	"github.com/hibiki-dev/encore/internal/app/render"
)

// Tab identifies the active view.
type Tab int

const (
	TabSongs Tab = iota
	TabQueue
	TabHistory
)

// String returns the tab name used in persisted preferences.
func (t Tab) String() string {
	switch t {
	case TabQueue:
		return "queue"
	case TabHistory:
		return "history"
	default:
		return "songs"
	}
}

// ParseTab parses a persisted tab name, defaulting to TabSongs.
func ParseTab(name string) Tab {
	switch name {
	case "queue":
		return TabQueue
	case "history":
		return TabHistory
	default:
		return TabSongs
	}
}

// keyMap defines the key bindings.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	tab      key.Binding
	search   key.Binding
	request  key.Binding
	favorite key.Binding
	hide     key.Binding
	voteUp   key.Binding
	voteDown key.Binding
	more     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tab")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		request:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "request/remove")),
		favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		hide:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide")),
		voteUp:   key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "vote up")),
		voteDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "vote down")),
		more:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.request, k.favorite, k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.tab, k.more},
		{k.search, k.request, k.favorite, k.hide},
		{k.voteUp, k.voteDown, k.quit},
	}
}

type stateChangedMsg struct{}

type noticeMsg notify.Notice

// channelSink bridges the notice hub into bubbletea messages.
type channelSink struct {
	ch chan notify.Notice
}

// Notify implements notify.Sink without blocking: when the display lags
// behind, older toasts are simply dropped.
func (s channelSink) Notify(n notify.Notice) {
	select {
	case s.ch <- n:
	default:
	}
}

// Model is the bubbletea application state.
type Model struct {
	app     *client.Client
	plan    render.Plan
	total   int
	hasMore bool

	tab       Tab
	cursor    int
	searching bool
	search    textinput.Model

	notice   *notify.Notice
	noticeCh chan notify.Notice

	width  int
	height int
	keys   keyMap
	help   help.Model
}

// New creates the TUI model. initialSearch seeds the search box, the
// terminal analogue of the browser's query parameter.
func New(app *client.Client, initialTab Tab, initialSearch string) *Model {
	search := textinput.New()
	search.Placeholder = "search songs..."
	search.CharLimit = 120
	if initialSearch != "" {
		search.SetValue(initialSearch)
		app.Search(initialSearch)
	}

	m := &Model{
		app:      app,
		tab:      initialTab,
		search:   search,
		noticeCh: make(chan notify.Notice, 8),
		keys:     newKeyMap(),
		help:     help.New(),
	}
	return m
}

// ActiveTab returns the current tab, persisted across sessions.
func (m *Model) ActiveTab() Tab {
	return m.tab
}

// Sink returns the hub sink feeding toasts into the display.
func (m *Model) Sink() notify.Sink {
	return channelSink{ch: m.noticeCh}
}

func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(m.waitForChange(), m.waitForNotice())
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.app.Changed()
		return stateChangedMsg{}
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.noticeCh)
	}
}

// refresh re-derives the display plan from the current state.
func (m *Model) refresh() {
	result := m.app.Derive()
	m.total = result.Total
	m.hasMore = result.HasMore
	m.plan = m.app.Plan()
	m.clampCursor()
}

func (m *Model) clampCursor() {
	max := m.rowCount() - 1
	if m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) rowCount() int {
	switch m.tab {
	case TabQueue:
		n := len(m.plan.UpNext)
		if m.plan.NowPlaying != nil {
			n++
		}
		return n
	case TabHistory:
		return len(m.plan.History)
	default:
		return len(m.plan.Rows)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case noticeMsg:
		n := notify.Notice(msg)
		m.notice = &n
		return m, m.waitForNotice()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.app.Search(m.search.Value())
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.tab):
		m.tab = (m.tab + 1) % 3
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.down):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		} else if m.tab == TabSongs && m.hasMore {
			// Hitting the end of the page asks for the next one, via the
			// scroll debouncer.
			m.app.LoadMore()
		}
		return m, nil

	case key.Matches(msg, m.keys.more):
		if m.tab == TabSongs && m.hasMore {
			m.app.LoadMore()
		}
		return m, nil

	case key.Matches(msg, m.keys.request):
		m.requestSelected()
		return m, nil

	case key.Matches(msg, m.keys.favorite):
		if row, ok := m.selectedSong(); ok {
			m.app.ToggleFavorite(row.Song)
		}
		return m, nil

	case key.Matches(msg, m.keys.hide):
		if row, ok := m.selectedSong(); ok {
			m.app.ToggleHidden(row.Song)
		}
		return m, nil

	case key.Matches(msg, m.keys.voteUp):
		if e, ok := m.selectedEntry(); ok {
			_ = m.app.Dispatcher().Vote(e.Entry.ID, true)
		}
		return m, nil

	case key.Matches(msg, m.keys.voteDown):
		if e, ok := m.selectedEntry(); ok {
			_ = m.app.Dispatcher().Vote(e.Entry.ID, false)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) selectedSong() (render.Row, bool) {
	if m.tab != TabSongs || m.cursor >= len(m.plan.Rows) {
		return render.Row{}, false
	}
	return m.plan.Rows[m.cursor], true
}

func (m *Model) selectedEntry() (render.QueueRow, bool) {
	if m.tab != TabQueue {
		return render.QueueRow{}, false
	}
	rows := m.queueRows()
	if m.cursor >= len(rows) {
		return render.QueueRow{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) queueRows() []render.QueueRow {
	rows := make([]render.QueueRow, 0, len(m.plan.UpNext)+1)
	if m.plan.NowPlaying != nil {
		rows = append(rows, *m.plan.NowPlaying)
	}
	return append(rows, m.plan.UpNext...)
}

// requestSelected flips the request state of the selection: requesting
// from the songs tab, un-requesting from either tab when permitted.
func (m *Model) requestSelected() {
	switch m.tab {
	case TabSongs:
		row, ok := m.selectedSong()
		if !ok {
			return
		}
		if row.Queued {
			if row.QueueID != 0 {
				m.unrequestByID(row.QueueID)
			}
			return
		}
		_ = m.app.Dispatcher().RequestSong(row.Song)
		m.refresh()
	case TabQueue:
		e, ok := m.selectedEntry()
		if !ok || !e.CanRemove {
			return
		}
		_ = m.app.Dispatcher().UnrequestEntry(e.Entry)
		m.refresh()
	}
}

func (m *Model) unrequestByID(queueID int) {
	for _, qr := range m.queueRows() {
		if qr.Entry.ID == queueID && qr.CanRemove {
			_ = m.app.Dispatcher().UnrequestEntry(qr.Entry)
			break
		}
	}
	m.refresh()
}
