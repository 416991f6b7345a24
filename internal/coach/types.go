package coach

import (
	"time"

	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/meals"
	"github.com/abhisek/farefit/internal/profile"
	"github.com/abhisek/farefit/internal/score"
)

// FallbackReply is shown when the coach cannot reach the LLM.
const FallbackReply = "I'm having trouble connecting right now. Keep logging your meals and try asking me again in a moment."

// Config controls the coach conversation.
type Config struct {
	// HistoryTurns is how many previous messages are sent with a question.
	HistoryTurns int

	// MaxTokens caps the reply length.
	MaxTokens int

	// Temperature for free-text replies.
	Temperature float64
}

// DefaultConfig returns the default coach configuration.
func DefaultConfig() Config {
	return Config{
		HistoryTurns: 10,
		MaxTokens:    600,
		Temperature:  0.7,
	}
}

// Reply is the coach's answer to one question.
type Reply struct {
	Text     string
	Fallback bool
	At       time.Time
}

// Message is one stored turn of the conversation.
type Message struct {
	Role     string
	Content  string
	Fallback bool
	At       time.Time
}

// Snapshot is what the coach knows about the user when answering.
type Snapshot struct {
	Profile *profile.Profile
	Goals   profile.Goals
	Today   meals.Macros
	Meals   int
	Daily   daily.Data
	Score   *score.State
}
