package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/router"
	"github.com/abhisek/farefit/internal/screen"
	"github.com/abhisek/farefit/internal/screens/coachchat"
	"github.com/abhisek/farefit/internal/screens/dashboard"
	"github.com/abhisek/farefit/internal/screens/leaderboard"
	"github.com/abhisek/farefit/internal/screens/mealsview"
	"github.com/abhisek/farefit/internal/ui/layout"
)

// Options are the services behind the dashboard.
type Options struct {
	UserID      string
	DisplayName string
	Today       func() string

	Scores dashboard.ScoreReader
	Daily  dashboard.DailyScorer
	Meals  mealsview.Source
	Board  leaderboard.Board
	Coach  coachchat.Coach
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status layout.Status
	width  int
	height int
}

// newAppModel creates a new AppModel with the dashboard screen.
func newAppModel(opts Options) AppModel {
	links := []dashboard.Link{
		{Label: "Meals", Key: "m", Open: func() screen.Screen { return mealsview.New(opts.UserID, opts.Meals) }},
		{Label: "Leaderboard", Key: "l", Open: func() screen.Screen { return leaderboard.New(opts.UserID, opts.Board) }},
		{Label: "Coach", Key: "c", Open: func() screen.Screen { return coachchat.New(opts.UserID, opts.Coach) }},
	}
	home := dashboard.New(opts.UserID, opts.Scores, opts.Daily, opts.Today, links)

	name := opts.DisplayName
	if name == "" {
		name = opts.UserID
	}
	return AppModel{
		router: router.New(home),
		status: layout.Status{User: name},
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.StatusMsg:
		m.status.Score = msg.Score
		m.status.Tier = msg.Tier.Label
		m.status.Color = msg.Tier.Color
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
		}
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	model := newAppModel(opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.WithError(err).Error("dashboard exited with an error")
		return fmt.Errorf("run dashboard: %w", err)
	}
	model.router.CloseAll()
	return nil
}
