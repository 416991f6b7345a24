package coach

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/farefit/internal/daily"
	"github.com/abhisek/farefit/internal/llm"
	"github.com/abhisek/farefit/internal/meals"
	"github.com/abhisek/farefit/internal/profile"
	"github.com/abhisek/farefit/internal/score"
	"github.com/abhisek/farefit/internal/store"
)

type fakeProfiles struct{}

func (fakeProfiles) Get(_ context.Context, userID string) (*profile.Profile, profile.Goals, error) {
	if userID != "ana" {
		return nil, profile.Goals{}, store.ErrNotFound
	}
	return &profile.Profile{ID: "ana", DisplayName: "Ana", Goal: profile.GoalLose, WeightKG: 64},
		profile.Goals{CalorieTarget: 1800, ProteinTarget: 130, CarbTarget: 180, FatTarget: 60}, nil
}

type fakeMeals []meals.Meal

func (f fakeMeals) ForDay(context.Context, string, string) ([]meals.Meal, error) {
	return f, nil
}

type fakeDaily struct{}

func (fakeDaily) Today(context.Context, string, string) daily.Data {
	return daily.Calculate(daily.Facts{MealCount: 2})
}

type fakeScores struct{}

func (fakeScores) Get(context.Context, string) (score.State, error) {
	st := score.NewState(time.Now())
	st.CurrentScore = 712
	st.StreakDays = 9
	return st, nil
}

func testSources() Sources {
	return Sources{
		Profiles: fakeProfiles{},
		Meals: fakeMeals{
			{Macros: meals.Macros{Calories: 450, Protein: 35}},
			{Macros: meals.Macros{Calories: 300, Protein: 20}},
		},
		Daily:  fakeDaily{},
		Scores: fakeScores{},
	}
}

func newTestService(t *testing.T, provider llm.Provider) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := DefaultConfig()
	cfg.HistoryTurns = 4
	return NewService(provider, st.ChatRepo(), testSources(), cfg, time.UTC)
}

func TestAsk(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: []byte("Add a protein source to dinner.")},
		llm.MockResponse{Content: []byte("Greek yogurt works well.")},
	)
	svc := newTestService(t, mock)
	ctx := t.Context()

	reply, err := svc.Ask(ctx, "ana", "How do I hit my protein?")
	require.NoError(t, err)
	assert.False(t, reply.Fallback)
	assert.Equal(t, "Add a protein source to dinner.", reply.Text)

	req := mock.Calls[0]
	assert.Nil(t, req.Schema)
	for _, want := range []string{"1800 kcal", "2 meals, 750 kcal, 55 g protein", "712 (Goal Crusher)", "streak 9"} {
		assert.Contains(t, req.System, want)
	}
	require.Len(t, req.Messages, 1)

	_, err = svc.Ask(ctx, "ana", "Any snack ideas?")
	require.NoError(t, err)
	require.Len(t, mock.Calls[1].Messages, 3, "previous turns are sent as history")
	assert.Equal(t, llm.RoleAssistant, mock.Calls[1].Messages[1].Role)

	history, err := svc.History(ctx, "ana", 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "How do I hit my protein?", history[0].Content)
	assert.Equal(t, "Greek yogurt works well.", history[3].Content)
}

func TestAskFallback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})
	svc := newTestService(t, mock)

	reply, err := svc.Ask(t.Context(), "ana", "hello")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Equal(t, FallbackReply, reply.Text)

	history, err := svc.History(t.Context(), "ana", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[1].Fallback)
}

func TestAskWithoutProvider(t *testing.T) {
	svc := newTestService(t, nil)
	reply, err := svc.Ask(t.Context(), "ana", "hello")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
}

func TestAskSkipsFallbackTurns(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: errors.New("boom")},
		llm.MockResponse{Content: []byte("Back online.")},
	)
	svc := newTestService(t, mock)
	ctx := t.Context()

	_, err := svc.Ask(ctx, "ana", "first")
	require.NoError(t, err)
	_, err = svc.Ask(ctx, "ana", "second")
	require.NoError(t, err)

	msgs := mock.Calls[1].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newTestService(t, llm.NewMockProvider())
	_, err := svc.Ask(t.Context(), "ana", "  ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestClear(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := t.Context()
	_, err := svc.Ask(ctx, "ana", "hello")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "ana"))
	history, err := svc.History(ctx, "ana", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSystemPromptWithoutData(t *testing.T) {
	prompt := buildSystemPrompt(Snapshot{Daily: daily.Empty()})
	assert.True(t, strings.HasPrefix(prompt, "You are FareFit Coach"))
	assert.Contains(t, prompt, "Daily score: 0/100")
	assert.NotContains(t, prompt, "FareScore")
}
