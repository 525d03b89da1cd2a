package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hibiki-dev/encore/internal/app/notify"
	"github.com/hibiki-dev/encore/internal/app/render"
	"github.com/hibiki-dev/encore/internal/app/sync"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241"))
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	nowStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	queuedBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	favBadge      = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("encore"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("  ")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	if m.tab == TabSongs {
		b.WriteString("  ")
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	switch m.tab {
	case TabSongs:
		b.WriteString(m.renderSongs())
	case TabQueue:
		b.WriteString(m.renderQueue())
	case TabHistory:
		b.WriteString(m.renderHistory())
	}

	if m.notice != nil {
		b.WriteString("\n")
		b.WriteString(m.renderNotice(*m.notice))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, 3)
	for t := TabSongs; t <= TabHistory; t++ {
		style := tabStyle
		if t == m.tab {
			style = activeTab
		}
		parts = append(parts, style.Render(t.String()))
	}
	return strings.Join(parts, "")
}

func (m *Model) renderStatus() string {
	switch m.app.Phase() {
	case sync.PhaseConnected:
		return dimStyle.Render("● online")
	case sync.PhaseConnecting:
		return warnStyle.Render("◌ connecting")
	case sync.PhaseExhausted:
		return errorStyle.Render("✕ offline — restart to retry")
	default:
		return warnStyle.Render("○ reconnecting")
	}
}

func (m *Model) renderSongs() string {
	if err := m.app.CatalogError(); err != nil {
		// Browsing is gone until a restart; the queue tabs still work.
		return errorStyle.Render("  Song catalog unavailable.") + "\n" +
			dimStyle.Render("  "+err.Error())
	}
	if m.plan.Empty {
		return dimStyle.Render("  No songs match your search.")
	}

	var b strings.Builder
	for i, row := range m.plan.Rows {
		b.WriteString(m.renderSongRow(i, row))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("  %d of %d songs", len(m.plan.Rows), m.total)
	if m.hasMore {
		footer += "  (m: load more)"
	}
	b.WriteString(dimStyle.Render(footer))
	return b.String()
}

func (m *Model) renderSongRow(i int, row render.Row) string {
	badges := make([]string, 0, 3)
	if row.Queued {
		badge := "♪ queued"
		if row.Optimistic {
			badge += "…"
		}
		badges = append(badges, queuedBadge.Render(badge))
	}
	if row.Favorited {
		badges = append(badges, favBadge.Render("♥"))
	}

	line := fmt.Sprintf("%s — %s  %s", row.Song.Name, row.Song.Artist,
		dimStyle.Render(fmt.Sprintf("[%s · %s]", row.Song.ParentGenre, row.Song.DisplayLength())))
	if len(badges) > 0 {
		line += "  " + strings.Join(badges, " ")
	}

	if i == m.cursor {
		return selectedStyle.Render("▶ " + line)
	}
	return "  " + line
}

func (m *Model) renderQueue() string {
	rows := m.queueRows()
	if len(rows) == 0 {
		return dimStyle.Render("  The queue is empty. Request something!")
	}

	var b strings.Builder
	for i, qr := range rows {
		prefix := "  "
		if i == m.cursor {
			prefix = "▶ "
		}

		line := fmt.Sprintf("%s — %s  %s %s",
			qr.Entry.Name, qr.Entry.Artist,
			dimStyle.Render(fmt.Sprintf("▲%d ▼%d", qr.Entry.Upvotes, qr.Entry.Downvotes)),
			dimStyle.Render(qr.Entry.UserAvatar+" "+qr.Entry.UserName))
		if qr.Favorited {
			line += " " + favBadge.Render("♥")
		}

		if i == 0 && m.plan.NowPlaying != nil {
			line = nowStyle.Render("NOW PLAYING  ") + line
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}

func (m *Model) renderHistory() string {
	if len(m.plan.History) == 0 {
		return dimStyle.Render("  Nothing has been played yet.")
	}

	var b strings.Builder
	for i, p := range m.plan.History {
		prefix := "  "
		if i == m.cursor {
			prefix = "▶ "
		}
		b.WriteString(fmt.Sprintf("%s%s — %s\n", prefix, p.Name, p.Artist))
	}
	return b.String()
}

func (m *Model) renderNotice(n notify.Notice) string {
	switch n.Level {
	case notify.LevelError:
		return errorStyle.Render("  ! " + n.Text)
	case notify.LevelWarn:
		return warnStyle.Render("  ! " + n.Text)
	default:
		return dimStyle.Render("  " + n.Text)
	}
}
