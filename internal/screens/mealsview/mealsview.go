// Package mealsview shows today's meals live and logs new ones from a
// quick-add line.
package mealsview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/farefit/internal/meals"
	"github.com/abhisek/farefit/internal/screen"
	"github.com/abhisek/farefit/internal/ui/components"
	"github.com/abhisek/farefit/internal/ui/layout"
	"github.com/abhisek/farefit/internal/ui/theme"
)

// Source is the slice of the meals service this screen needs.
type Source interface {
	Watch(ctx context.Context, userID string) (<-chan []meals.Meal, func(), error)
	Log(ctx context.Context, m meals.Meal) (*meals.Meal, error)
}

type listMsg []meals.Meal

type loggedMsg struct {
	meal *meals.Meal
	err  error
}

// MealsScreen lists today's meals and updates whenever one is logged.
type MealsScreen struct {
	userID string
	src    Source

	updates <-chan []meals.Meal
	cancel  func()

	input components.TextInput
	meals []meals.Meal
	err   error
}

var _ screen.Screen = (*MealsScreen)(nil)
var _ screen.Closer = (*MealsScreen)(nil)

// New creates the meals screen.
func New(userID string, src Source) *MealsScreen {
	return &MealsScreen{
		userID: userID,
		src:    src,
		input:  components.NewTextInput("Oatmeal, 310, 12  (name, kcal, protein g)", 120),
	}
}

// Init subscribes to today's meal list. Only the first call subscribes;
// a single wait loop runs per subscription.
func (m *MealsScreen) Init() tea.Cmd {
	if m.updates != nil || m.err != nil {
		return m.input.Init()
	}
	ch, cancel, err := m.src.Watch(context.Background(), m.userID)
	if err != nil {
		m.err = err
		return m.input.Init()
	}
	m.updates, m.cancel = ch, cancel
	return tea.Batch(m.input.Init(), m.wait())
}

// Close drops the subscription.
func (m *MealsScreen) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// wait blocks on the next list. A closed subscription ends the loop.
func (m *MealsScreen) wait() tea.Cmd {
	ch := m.updates
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		list, ok := <-ch
		if !ok {
			return nil
		}
		return listMsg(list)
	}
}

func (m *MealsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listMsg:
		m.meals = msg
		return m, m.wait()

	case loggedMsg:
		if msg.err != nil {
			m.input.Fail(msg.err)
			return m, nil
		}
		m.input.Done(fmt.Sprintf("Logged %s (%.0f kcal) as %s", msg.meal.Name, msg.meal.Calories, msg.meal.Type))
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MealsScreen) submit() tea.Cmd {
	meal, err := ParseQuickAdd(m.input.Value())
	if err != nil {
		m.input.Fail(err)
		return nil
	}
	meal.UserID = m.userID
	src := m.src
	return func() tea.Msg {
		logged, err := src.Log(context.Background(), meal)
		return loggedMsg{meal: logged, err: err}
	}
}

func (m *MealsScreen) View(width, height int) string {
	cw := min(width-4, 80)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Today's meals"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(theme.Loss.Render(m.err.Error()))
	case len(m.meals) == 0:
		b.WriteString(theme.Hint.Render("Nothing logged yet today."))
	default:
		b.WriteString(renderTable(m.meals))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Render("Quick add"))
	b.WriteString("\n")
	b.WriteString(m.input.View())

	return lipgloss.NewStyle().Width(cw).Padding(1, 2).Render(b.String())
}

func (m *MealsScreen) Title() string {
	return "Meals"
}

func (m *MealsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Log meal"},
		{Key: "Esc", Description: "Back"},
	}
}

func renderTable(list []meals.Meal) string {
	var b strings.Builder
	for _, meal := range list {
		b.WriteString(theme.Body.Render(fmt.Sprintf("%-9s %-28s %5.0f kcal  P %3.0f  C %3.0f  F %3.0f",
			meal.Type, truncate(meal.Name, 28), meal.Calories, meal.Protein, meal.Carbs, meal.Fats)))
		b.WriteString("\n")
	}
	t := meals.Totals(list)
	b.WriteString(theme.Selected.Render(fmt.Sprintf("%-9s %-28s %5.0f kcal  P %3.0f  C %3.0f  F %3.0f",
		"total", fmt.Sprintf("%d meals", len(list)), t.Calories, t.Protein, t.Carbs, t.Fats)))
	return b.String()
}

// ParseQuickAdd reads "name, kcal[, protein[, carbs[, fats]]]". The meal
// type is left empty so the service picks it from the time of day.
func ParseQuickAdd(s string) (meals.Meal, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 5 {
		return meals.Meal{}, fmt.Errorf("expected: name, kcal[, protein[, carbs[, fats]]]")
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return meals.Meal{}, fmt.Errorf("meal name is required")
	}

	values := make([]float64, 4)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return meals.Meal{}, fmt.Errorf("%q is not a valid amount", strings.TrimSpace(p))
		}
		values[i] = v
	}

	return meals.Meal{
		Name:   name,
		Source: meals.SourceManual,
		Macros: meals.Macros{
			Calories: values[0],
			Protein:  values[1],
			Carbs:    values[2],
			Fats:     values[3],
		},
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
