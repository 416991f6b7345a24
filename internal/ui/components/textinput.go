package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/farefit/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with FareFit styling and a status
// line for the last submission.
type TextInput struct {
	Model  textinput.Model
	status string
	failed bool
}

// NewTextInput creates a focused text input.
func NewTextInput(placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input and, below it, the last status line.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.status != "" {
		style := lipgloss.NewStyle().Foreground(theme.Success)
		if t.failed {
			style = lipgloss.NewStyle().Foreground(theme.Error)
		}
		view += "\n" + style.Render(t.status)
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Done clears the input and shows a confirmation.
func (t *TextInput) Done(status string) {
	t.Model.Reset()
	t.status = status
	t.failed = false
}

// Fail keeps the input and shows an error.
func (t *TextInput) Fail(err error) {
	t.status = err.Error()
	t.failed = true
}
