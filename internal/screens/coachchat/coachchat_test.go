package coachchat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/farefit/internal/coach"
)

type fakeCoach struct {
	history   []coach.Message
	reply     coach.Reply
	err       error
	questions []string
}

func (f *fakeCoach) Ask(_ context.Context, _, q string) (coach.Reply, error) {
	f.questions = append(f.questions, q)
	return f.reply, f.err
}

func (f *fakeCoach) History(context.Context, string, int) ([]coach.Message, error) {
	return f.history, nil
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }

func TestCoachScreenShowsHistory(t *testing.T) {
	fc := &fakeCoach{history: []coach.Message{
		{Role: "user", Content: "How much protein today?"},
		{Role: "assistant", Content: "You are at 92 g of 128 g."},
	}}
	c := New("ana", fc)
	c.Update(historyMsg{messages: fc.history})

	view := c.View(100, 40)
	assert.Contains(t, view, "How much protein today?")
	assert.Contains(t, view, "92 g of 128 g")
}

func TestCoachScreenAsk(t *testing.T) {
	fc := &fakeCoach{reply: coach.Reply{Text: "Add a yogurt after dinner.", At: time.Now()}}
	c := New("ana", fc)
	c.input.Model.SetValue("  what should I eat?  ")

	_, cmd := c.Update(enter())
	require.NotNil(t, cmd)
	assert.True(t, c.waiting)
	assert.Empty(t, c.input.Value())
	assert.Contains(t, c.View(100, 40), "Coach is thinking")

	// A second enter while waiting does nothing.
	c.input.Model.SetValue("again")
	_, again := c.Update(enter())
	assert.Nil(t, again)

	reply, err := fc.Ask(context.Background(), "ana", "what should I eat?")
	c.Update(replyMsg{reply: reply, err: err})
	assert.False(t, c.waiting)
	require.Len(t, c.messages, 2)
	assert.Equal(t, "what should I eat?", c.messages[0].Content)
	assert.Contains(t, c.View(100, 40), "Add a yogurt after dinner.")
}

func TestCoachScreenFallbackReply(t *testing.T) {
	c := New("ana", &fakeCoach{})
	c.Update(replyMsg{reply: coach.Reply{Text: coach.FallbackReply, Fallback: true}})
	assert.Contains(t, c.View(120, 40), "(offline)")
}

func TestCoachScreenAskError(t *testing.T) {
	c := New("ana", &fakeCoach{})
	c.waiting = true
	c.Update(replyMsg{err: errors.New("database is locked")})
	assert.False(t, c.waiting)
	assert.Contains(t, c.View(100, 40), "database is locked")
}

func TestCoachScreenIgnoresBlankQuestion(t *testing.T) {
	c := New("ana", &fakeCoach{})
	c.input.Model.SetValue("   ")
	_, cmd := c.Update(enter())
	assert.Nil(t, cmd)
	assert.False(t, c.waiting)
}
