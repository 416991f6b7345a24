package leaderboard

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/farefit/internal/social"
)

type fakeBoard struct {
	friends []social.Entry
	global  []social.Entry
	err     error
	limit   int
}

func (f *fakeBoard) Leaderboard(context.Context, string) ([]social.Entry, error) {
	return f.friends, f.err
}

func (f *fakeBoard) Global(_ context.Context, limit int) ([]social.Entry, error) {
	f.limit = limit
	return f.global, f.err
}

func board() *fakeBoard {
	return &fakeBoard{
		friends: social.Rank([]social.Entry{
			{UserID: "ana", DisplayName: "Ana", Score: 612, StreakDays: 4, Self: true},
			{UserID: "ben", DisplayName: "Ben", Score: 705, StreakDays: 12},
		}),
		global: social.Rank([]social.Entry{
			{UserID: "ana", DisplayName: "Ana", Score: 612, StreakDays: 4},
			{UserID: "ben", DisplayName: "Ben", Score: 705, StreakDays: 12},
			{UserID: "cy", DisplayName: "Cy", Score: 810, StreakDays: 40},
		}),
	}
}

func TestLeaderboardFriends(t *testing.T) {
	l := New("ana", board())
	l.Update(l.Init()())

	view := l.View(100, 30)
	assert.Contains(t, view, "Friends")
	assert.Contains(t, view, "Goal Crusher")
	assert.Contains(t, view, "2. Ana")
	assert.NotContains(t, view, "Cy")
}

func TestLeaderboardToggleGlobalMarksSelf(t *testing.T) {
	b := board()
	l := New("ana", b)
	l.Update(l.Init()())

	_, cmd := l.Update(tea.KeyPressMsg{Code: 'g', Text: "g"})
	require.NotNil(t, cmd)
	assert.Contains(t, l.View(100, 30), "Loading")

	msg := cmd().(loadedMsg)
	assert.True(t, msg.global)
	l.Update(msg)

	assert.Equal(t, GlobalLimit, b.limit)
	require.Len(t, l.entries, 3)
	assert.Equal(t, "cy", l.entries[0].UserID)
	assert.True(t, l.entries[2].Self)
	assert.Contains(t, l.View(100, 30), "FareFit Elite")
}

func TestLeaderboardDropsStaleLoad(t *testing.T) {
	l := New("ana", board())
	friends := l.Init()()

	l.Update(tea.KeyPressMsg{Code: 'g', Text: "g"})
	l.Update(friends)

	assert.False(t, l.loaded)
}

func TestLeaderboardError(t *testing.T) {
	l := New("ana", &fakeBoard{err: errors.New("store closed")})
	l.Update(l.Init()())
	assert.Contains(t, l.View(100, 30), "store closed")
}
