// Package dashboard is the home screen: FareScore, tier progress and the
// daily points breakdown.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/router"
	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/screen"
	"github.com/abhisek/farefit/internal/ui/components"
	"github.com/abhisek/farefit/internal/ui/layout"
	"github.com/abhisek/farefit/internal/ui/theme"
)

// ScoreReader loads a user's FareScore.
type ScoreReader interface {
	Get(ctx context.Context, userID string) (score.State, error)
}

// DailyScorer computes today's points.
type DailyScorer interface {
	Today(ctx context.Context, userID, day string) daily.Data
}

// Link is a menu entry that opens another screen.
type Link struct {
	Label string
	Key   string
	Open  func() screen.Screen
}

type loadedMsg struct {
	state score.State
	daily daily.Data
	err   error
}

// DashboardScreen shows where the user stands today.
type DashboardScreen struct {
	userID string
	scores ScoreReader
	daily  DailyScorer
	day    func() string

	menu   components.Menu
	state  score.State
	today  daily.Data
	err    error
	loaded bool
}

var _ screen.Screen = (*DashboardScreen)(nil)

// New creates the dashboard. day returns the current local day key.
func New(userID string, scores ScoreReader, dailyScorer DailyScorer, day func() string, links []Link) *DashboardScreen {
	items := make([]components.MenuItem, 0, len(links)+1)
	for _, l := range links {
		open := l.Open
		items = append(items, components.MenuItem{
			Label: l.Label,
			Key:   l.Key,
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: open()} }
			},
		})
	}
	items = append(items, components.MenuItem{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }})

	return &DashboardScreen{
		userID: userID,
		scores: scores,
		daily:  dailyScorer,
		day:    day,
		menu:   components.NewMenu(items),
		today:  daily.Empty(),
	}
}

// Init reloads the score. The router calls it again whenever the dashboard
// is revealed, so logging a meal elsewhere shows up on return.
func (d *DashboardScreen) Init() tea.Cmd {
	userID, day := d.userID, d.day()
	return func() tea.Msg {
		ctx := context.Background()
		st, err := d.scores.Get(ctx, userID)
		return loadedMsg{state: st, daily: d.daily.Today(ctx, userID, day), err: err}
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		d.loaded = true
		d.err = msg.err
		d.today = msg.daily
		if msg.err != nil {
			return d, nil
		}
		d.state = msg.state
		st := msg.state
		return d, func() tea.Msg {
			return screen.StatusMsg{Score: st.CurrentScore, Tier: st.Tier()}
		}
	}

	var cmd tea.Cmd
	d.menu, cmd = d.menu.Update(msg)
	return d, cmd
}

func (d *DashboardScreen) View(width, height int) string {
	cw := min(width-4, 72)

	var sections []string
	switch {
	case !d.loaded:
		sections = append(sections, theme.Hint.Render("Loading…"))
	case d.err != nil:
		sections = append(sections, theme.Loss.Render("Could not load your FareScore: "+d.err.Error()))
	default:
		sections = append(sections, renderScore(d.state, cw))
	}
	sections = append(sections, renderDaily(d.today, cw))
	sections = append(sections, d.menu.View())

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content)
}

func (d *DashboardScreen) Title() string {
	return "Dashboard"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "q", Description: "Quit"},
	}
}

func renderScore(st score.State, width int) string {
	tier := st.Tier()
	tierStyle := lipgloss.NewStyle().Foreground(theme.Hex(tier.Color)).Bold(true)

	lines := []string{
		theme.Title.Render("FareScore ") + tierStyle.Render(fmt.Sprintf("%d", st.CurrentScore)) +
			theme.Subtitle.Render(fmt.Sprintf("  smoothed %d", st.SmoothedScore)),
		tierStyle.Render(tier.Label) + theme.Subtitle.Render("  "+tier.Description),
	}

	if next, ok := score.NextTier(st.CurrentScore); ok {
		bar := components.NewProgressBar("To "+next.Label, st.CurrentScore-tier.Min, next.Min-tier.Min, width-6)
		bar.Fill = theme.Hex(next.Color)
		lines = append(lines, bar.View())
		lines = append(lines, theme.Hint.Render(fmt.Sprintf("%d points to go", score.PointsToNext(st.CurrentScore))))
	} else {
		lines = append(lines, theme.Gain.Render("Top tier reached"))
	}

	lines = append(lines, theme.Body.Render(fmt.Sprintf(
		"Streak %d days · consistency %.0f%% · %d meals, %d workouts, %d penalties this month",
		st.StreakDays, st.ConsistencyRate*100,
		st.MealsLoggedThisMonth, st.WorkoutsThisMonth, st.PenaltiesThisMonth,
	)))

	return theme.Card.Width(width).Render(strings.Join(lines, "\n"))
}

func renderDaily(d daily.Data, width int) string {
	lines := []string{theme.Title.Render(fmt.Sprintf("Today %d/100", d.TotalScore))}
	for _, b := range d.Buckets() {
		bar := components.NewProgressBar(b.Label, b.Score, b.MaxScore, width-6)
		if b.Full() {
			bar.Fill = theme.Success
		}
		lines = append(lines, bar.View())
	}
	return theme.Card.Width(width).Render(strings.Join(lines, "\n"))
}
