package dashboard

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/router"
	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/screen"
)

type fakeScores struct {
	state score.State
	err   error
	calls int
}

func (f *fakeScores) Get(_ context.Context, _ string) (score.State, error) {
	f.calls++
	return f.state, f.err
}

type fakeDaily struct{ day string }

func (f *fakeDaily) Today(_ context.Context, _, day string) daily.Data {
	f.day = day
	return daily.Calculate(daily.Facts{MealCount: 3, HasWorkout: true})
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "meals" }
func (s *stubScreen) Title() string                          { return "Meals" }

func newDashboard(scores *fakeScores, dl *fakeDaily) *DashboardScreen {
	return New("ana", scores, dl, func() string { return "2026-03-14" }, []Link{
		{Label: "Meals", Key: "m", Open: func() screen.Screen { return &stubScreen{} }},
	})
}

func load(t *testing.T, d *DashboardScreen) tea.Cmd {
	t.Helper()
	msg := d.Init()()
	_, cmd := d.Update(msg)
	return cmd
}

func TestDashboardLoadsScoreAndToday(t *testing.T) {
	scores := &fakeScores{state: score.State{CurrentScore: 612, SmoothedScore: 600, StreakDays: 4}}
	dl := &fakeDaily{}
	d := newDashboard(scores, dl)

	cmd := load(t, d)
	require.NotNil(t, cmd)
	status, ok := cmd().(screen.StatusMsg)
	require.True(t, ok)
	assert.Equal(t, 612, status.Score)
	assert.Equal(t, score.BandTracker, status.Tier.Band)
	assert.Equal(t, "2026-03-14", dl.day)

	view := d.View(100, 40)
	assert.Contains(t, view, "612")
	assert.Contains(t, view, "Consistent Tracker")
	assert.Contains(t, view, "88 points to go")
	assert.Contains(t, view, "Today 70/100")
}

func TestDashboardTopTier(t *testing.T) {
	d := newDashboard(&fakeScores{state: score.State{CurrentScore: 850}}, &fakeDaily{})
	load(t, d)
	assert.Contains(t, d.View(100, 40), "Top tier reached")
}

func TestDashboardScoreError(t *testing.T) {
	d := newDashboard(&fakeScores{err: errors.New("no such user")}, &fakeDaily{})

	cmd := load(t, d)
	assert.Nil(t, cmd)
	view := d.View(100, 40)
	assert.Contains(t, view, "no such user")
	assert.Contains(t, view, "Today 70/100")
}

func TestDashboardMenuOpensLink(t *testing.T) {
	d := newDashboard(&fakeScores{}, &fakeDaily{})

	_, cmd := d.Update(tea.KeyPressMsg{Code: 'm', Text: "m"})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Meals", push.Screen.Title())
}
