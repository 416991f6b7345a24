// Package coachchat is the chat screen for the AI nutrition coach.
package coachchat

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/farefit/internal/coach"
	"github.com/abhisek/farefit/internal/llm"
	"github.com/abhisek/farefit/internal/screen"
	"github.com/abhisek/farefit/internal/ui/components"
	"github.com/abhisek/farefit/internal/ui/layout"
	"github.com/abhisek/farefit/internal/ui/theme"
)

// HistoryLimit is how many stored messages are shown on open.
const HistoryLimit = 20

const tickInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Coach is the slice of the coach service this screen needs.
type Coach interface {
	Ask(ctx context.Context, userID, question string) (coach.Reply, error)
	History(ctx context.Context, userID string, limit int) ([]coach.Message, error)
}

type historyMsg struct {
	messages []coach.Message
	err      error
}

type replyMsg struct {
	reply coach.Reply
	err   error
}

type tickMsg time.Time

// CoachScreen is a single conversation with the coach.
type CoachScreen struct {
	userID string
	coach  Coach

	input    components.TextInput
	messages []coach.Message
	waiting  bool
	frame    int
	err      error
}

var _ screen.Screen = (*CoachScreen)(nil)

// New creates the coach screen.
func New(userID string, c Coach) *CoachScreen {
	return &CoachScreen{
		userID: userID,
		coach:  c,
		input:  components.NewTextInput("Ask about your meals, macros or training…", 500),
	}
}

func (c *CoachScreen) Init() tea.Cmd {
	co, userID := c.coach, c.userID
	return tea.Batch(c.input.Init(), func() tea.Msg {
		msgs, err := co.History(context.Background(), userID, HistoryLimit)
		return historyMsg{messages: msgs, err: err}
	})
}

func (c *CoachScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		if msg.err != nil {
			c.err = msg.err
			return c, nil
		}
		c.messages = msg.messages
		return c, nil

	case replyMsg:
		c.waiting = false
		if msg.err != nil {
			c.input.Fail(msg.err)
			return c, nil
		}
		c.messages = append(c.messages, coach.Message{
			Role:     string(llm.RoleAssistant),
			Content:  msg.reply.Text,
			Fallback: msg.reply.Fallback,
			At:       msg.reply.At,
		})
		return c, nil

	case tickMsg:
		if !c.waiting {
			return c, nil
		}
		c.frame = (c.frame + 1) % len(spinnerFrames)
		return c, tick()

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return c, c.send()
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *CoachScreen) send() tea.Cmd {
	question := strings.TrimSpace(c.input.Value())
	if question == "" || c.waiting {
		return nil
	}
	c.waiting = true
	c.input.Done("")
	c.messages = append(c.messages, coach.Message{
		Role:    string(llm.RoleUser),
		Content: question,
		At:      time.Now(),
	})

	co, userID := c.coach, c.userID
	return tea.Batch(tick(), func() tea.Msg {
		reply, err := co.Ask(context.Background(), userID, question)
		return replyMsg{reply: reply, err: err}
	})
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (c *CoachScreen) View(width, height int) string {
	cw := min(width-4, 90)

	var lines []string
	if c.err != nil {
		lines = append(lines, theme.Loss.Render("Could not load the conversation: "+c.err.Error()))
	}
	if len(c.messages) == 0 && c.err == nil {
		lines = append(lines, theme.Hint.Render("Ask the coach anything about today's food and training."))
	}
	for _, m := range c.messages {
		lines = append(lines, renderMessage(m, cw-4))
	}
	if c.waiting {
		lines = append(lines, theme.Subtitle.Render(spinnerFrames[c.frame]+" Coach is thinking…"))
	}

	// Keep the newest messages in view.
	inputView := c.input.View()
	avail := height - lipgloss.Height(inputView) - 3
	chat := strings.Join(lines, "\n\n")
	if h := lipgloss.Height(chat); avail > 0 && h > avail {
		all := strings.Split(chat, "\n")
		chat = strings.Join(all[len(all)-avail:], "\n")
	}

	return lipgloss.NewStyle().Width(cw).Padding(1, 2).Render(chat + "\n\n" + inputView)
}

func (c *CoachScreen) Title() string {
	return "Coach"
}

func (c *CoachScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Back"},
	}
}

func renderMessage(m coach.Message, width int) string {
	body := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
	if m.Role == string(llm.RoleUser) {
		return theme.Selected.Render("You") + "\n" + body.Render(m.Content)
	}
	label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Coach")
	if m.Fallback {
		label += theme.Hint.Render("  (offline)")
		body = body.Foreground(theme.TextDim)
	}
	return label + "\n" + body.Render(m.Content)
}
