// Package leaderboard ranks the user against friends or everyone.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/farefit/internal/screen"
	"github.com/abhisek/farefit/internal/social"
	"github.com/abhisek/farefit/internal/ui/layout"
	"github.com/abhisek/farefit/internal/ui/theme"
)

// GlobalLimit is how many users the global board shows.
const GlobalLimit = 25

// Board is the slice of the social service this screen needs.
type Board interface {
	Leaderboard(ctx context.Context, userID string) ([]social.Entry, error)
	Global(ctx context.Context, limit int) ([]social.Entry, error)
}

type loadedMsg struct {
	global  bool
	entries []social.Entry
	err     error
}

// LeaderboardScreen shows ranked entries. g toggles between friends and
// the global board.
type LeaderboardScreen struct {
	userID  string
	board   Board
	global  bool
	entries []social.Entry
	err     error
	loaded  bool
}

var _ screen.Screen = (*LeaderboardScreen)(nil)

// New creates the screen on the friends board.
func New(userID string, board Board) *LeaderboardScreen {
	return &LeaderboardScreen{userID: userID, board: board}
}

func (l *LeaderboardScreen) Init() tea.Cmd {
	return l.load(l.global)
}

func (l *LeaderboardScreen) load(global bool) tea.Cmd {
	board, userID := l.board, l.userID
	return func() tea.Msg {
		ctx := context.Background()
		if !global {
			entries, err := board.Leaderboard(ctx, userID)
			return loadedMsg{entries: entries, err: err}
		}
		entries, err := board.Global(ctx, GlobalLimit)
		for i := range entries {
			entries[i].Self = entries[i].UserID == userID
		}
		return loadedMsg{global: true, entries: entries, err: err}
	}
}

func (l *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		// Ignore a stale load after the user toggled again.
		if msg.global != l.global {
			return l, nil
		}
		l.loaded = true
		l.entries, l.err = msg.entries, msg.err
		return l, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "g", "tab":
			l.global = !l.global
			l.loaded = false
			return l, l.load(l.global)
		case "r":
			l.loaded = false
			return l, l.load(l.global)
		}
	}
	return l, nil
}

func (l *LeaderboardScreen) View(width, height int) string {
	heading := "Friends"
	if l.global {
		heading = "Everyone"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(heading))
	b.WriteString("\n\n")

	switch {
	case !l.loaded:
		b.WriteString(theme.Hint.Render("Loading…"))
	case l.err != nil:
		b.WriteString(theme.Loss.Render(l.err.Error()))
	case len(l.entries) == 0:
		b.WriteString(theme.Hint.Render("No scores yet. Add friends with `farefit friends add`."))
	default:
		for _, e := range l.entries {
			b.WriteString(renderEntry(e))
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().Width(min(width-4, 80)).Padding(1, 2).Render(b.String())
}

func (l *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (l *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "g", Description: "Friends/Everyone"},
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func renderEntry(e social.Entry) string {
	line := fmt.Sprintf("%3d. %-20s %4d  %-18s %3dd",
		e.Rank, truncate(e.DisplayName, 20), e.Score, e.Tier.Label, e.StreakDays)
	style := lipgloss.NewStyle().Foreground(theme.Hex(e.Tier.Color))
	if e.Self {
		return theme.Selected.Render("▸") + style.Bold(true).Render(line)
	}
	return " " + style.Render(line)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
