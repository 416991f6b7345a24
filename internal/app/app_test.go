package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/farefit/internal/coach"
	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/meals"
	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/screen"
	"github.com/abhisek/farefit/internal/social"
)

type stubServices struct{ hub *meals.Hub }

func (stubServices) Get(context.Context, string) (score.State, error) {
	return score.State{CurrentScore: 705, StreakDays: 9}, nil
}

func (stubServices) Today(context.Context, string, string) daily.Data { return daily.Empty() }

func (s stubServices) Watch(_ context.Context, userID string) (<-chan []meals.Meal, func(), error) {
	ch, cancel := s.hub.Subscribe(userID)
	return ch, cancel, nil
}

func (stubServices) Log(_ context.Context, m meals.Meal) (*meals.Meal, error) { return &m, nil }

func (stubServices) Leaderboard(context.Context, string) ([]social.Entry, error) { return nil, nil }

func (stubServices) Global(context.Context, int) ([]social.Entry, error) { return nil, nil }

func (stubServices) Ask(context.Context, string, string) (coach.Reply, error) {
	return coach.Reply{Text: "ok"}, nil
}

func (stubServices) History(context.Context, string, int) ([]coach.Message, error) { return nil, nil }

func newTestApp() (AppModel, *meals.Hub) {
	hub := meals.NewHub()
	s := stubServices{hub: hub}
	return newAppModel(Options{
		UserID:      "ana",
		DisplayName: "Ana",
		Today:       func() string { return "2026-03-14" },
		Scores:      s,
		Daily:       s,
		Meals:       s,
		Board:       s,
		Coach:       s,
	}), hub
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestStatusMsgUpdatesHeader(t *testing.T) {
	m, _ := newTestApp()
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, cmd := update(m, screen.StatusMsg{Score: 705, Tier: score.GetTier(705)})

	assert.Nil(t, cmd)
	assert.Equal(t, "Ana", m.status.User)
	assert.Equal(t, 705, m.status.Score)
	assert.Equal(t, "Goal Crusher", m.status.Tier)
	assert.Equal(t, "#27AE60", m.status.Color)
}

func TestEscPopsAndClosesMealsScreen(t *testing.T) {
	m, hub := newTestApp()

	m, cmd := update(m, tea.KeyPressMsg{Code: 'm', Text: "m"})
	require.NotNil(t, cmd)
	m, _ = update(m, cmd())
	assert.Equal(t, 2, m.router.Depth())
	assert.Equal(t, "Meals", m.router.Active().Title())
	assert.Equal(t, 1, hub.Subscribers("ana"))

	m, cmd = update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	m, _ = update(m, cmd())
	assert.Equal(t, "Dashboard", m.router.Active().Title())
	assert.Equal(t, 0, hub.Subscribers("ana"))
}

func TestEscAtRootIsNoop(t *testing.T) {
	m, _ := newTestApp()
	_, cmd := update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
}
