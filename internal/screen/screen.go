package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens holding subscriptions. The router calls
// Close when the screen leaves the stack.
type Closer interface {
	Close()
}

// StatusMsg updates the score badge in the header.
type StatusMsg struct {
	Score int
	Tier  score.Tier
}
